package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/service"
)

// MockInitiateRepo
type MockInitiateRepo struct {
	mock.Mock
}

func (m *MockInitiateRepo) Create(ctx context.Context, in *domain.Initiate) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}
func (m *MockInitiateRepo) GetByID(ctx context.Context, id int64) (*domain.Initiate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Initiate), args.Error(1)
}
func (m *MockInitiateRepo) GetByTelegram(ctx context.Context, handle, name string) (*domain.Initiate, error) {
	args := m.Called(ctx, handle, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Initiate), args.Error(1)
}
func (m *MockInitiateRepo) List(ctx context.Context) ([]domain.Initiate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Initiate), args.Error(1)
}
func (m *MockInitiateRepo) ListByStatus(ctx context.Context, status domain.InitiateStatus, oldestFirst bool) ([]domain.Initiate, error) {
	args := m.Called(ctx, status, oldestFirst)
	return args.Get(0).([]domain.Initiate), args.Error(1)
}
func (m *MockInitiateRepo) SetReview(ctx context.Context, id int64, status domain.InitiateStatus, reviewedBy string) error {
	args := m.Called(ctx, id, status, reviewedBy)
	return args.Error(0)
}
func (m *MockInitiateRepo) BindChat(ctx context.Context, handle string, chatID int64) error {
	args := m.Called(ctx, handle, chatID)
	return args.Error(0)
}
func (m *MockInitiateRepo) ApprovedChatIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockInitiateRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockInitiateRepo) CountByStatus(ctx context.Context) (int, int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Int(2), args.Error(3)
}

// MockElderRepo
type MockElderRepo struct {
	mock.Mock
}

func (m *MockElderRepo) Upsert(ctx context.Context, e *domain.Elder) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockElderRepo) Get(ctx context.Context, userID int64) (*domain.Elder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Elder), args.Error(1)
}
func (m *MockElderRepo) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockElderRepo) List(ctx context.Context) ([]domain.Elder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Elder), args.Error(1)
}

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Ensure(ctx context.Context, chatID, userID int64, username, firstName string) error {
	args := m.Called(ctx, chatID, userID, username, firstName)
	return args.Error(0)
}
func (m *MockMemberRepo) Get(ctx context.Context, chatID, userID int64) (*domain.Member, error) {
	args := m.Called(ctx, chatID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) GetByUsername(ctx context.Context, chatID int64, username string) (*domain.Member, error) {
	args := m.Called(ctx, chatID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) IncrementWarnCount(ctx context.Context, chatID, userID int64) (int, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockMemberRepo) ResetWarnCount(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}
func (m *MockMemberRepo) SetBanned(ctx context.Context, chatID, userID int64, banned bool, reason string) error {
	args := m.Called(ctx, chatID, userID, banned, reason)
	return args.Error(0)
}

// MockWarningRepo
type MockWarningRepo struct {
	mock.Mock
}

func (m *MockWarningRepo) Create(ctx context.Context, w *domain.Warning) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}
func (m *MockWarningRepo) ListByUser(ctx context.Context, chatID, userID int64) ([]domain.Warning, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Get(0).([]domain.Warning), args.Error(1)
}
func (m *MockWarningRepo) DeleteByUser(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}
func (m *MockWarningRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockTicketRepo
type MockTicketRepo struct {
	mock.Mock
}

func (m *MockTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}
func (m *MockTicketRepo) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}
func (m *MockTicketRepo) MarkReplied(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTicketRepo) CountOpen(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockChatSettingRepo
type MockChatSettingRepo struct {
	mock.Mock
}

func (m *MockChatSettingRepo) Upsert(ctx context.Context, s *domain.ChatSetting) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockChatSettingRepo) Get(ctx context.Context, chatID int64) (*domain.ChatSetting, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatSetting), args.Error(1)
}

// MockOutboxRepo
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, e *domain.OutboxEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockOutboxRepo) ListUnsent(ctx context.Context, maxAttempts, limit int) ([]domain.OutboxEntry, error) {
	args := m.Called(ctx, maxAttempts, limit)
	return args.Get(0).([]domain.OutboxEntry), args.Error(1)
}
func (m *MockOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockOutboxRepo) MarkFailed(ctx context.Context, id int64, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}
func (m *MockOutboxRepo) PruneSent(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) QueueEmail(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
func (m *MockNotifier) QueueDM(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}
func (m *MockNotifier) Sweep(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}
func (m *MockNotifier) Broadcast(ctx context.Context, chatIDs []int64, text string) (int, int) {
	args := m.Called(ctx, chatIDs, text)
	return args.Int(0), args.Int(1)
}

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockDMSender
type MockDMSender struct {
	mock.Mock
}

func (m *MockDMSender) SendDM(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

// MockModerator
type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) BanMember(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}
func (m *MockModerator) UnbanMember(ctx context.Context, chatID, userID int64) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}
func (m *MockModerator) RestrictMember(ctx context.Context, chatID, userID int64, canSend bool, until time.Time) error {
	args := m.Called(ctx, chatID, userID, canSend, until)
	return args.Error(0)
}
func (m *MockModerator) PromoteMember(ctx context.Context, chatID, userID int64, promote bool) error {
	args := m.Called(ctx, chatID, userID, promote)
	return args.Error(0)
}

var _ service.NotifierService = (*MockNotifier)(nil)
var _ service.EmailSender = (*MockEmailSender)(nil)
var _ service.DMSender = (*MockDMSender)(nil)
var _ service.ChatModerator = (*MockModerator)(nil)
