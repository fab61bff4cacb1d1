package postgres

import (
	"database/sql"

	"shadowlurkers-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.InitiateRepository
	repository.ElderRepository
	repository.MemberRepository
	repository.WarningRepository
	repository.TicketRepository
	repository.ChatSettingRepository
	repository.OutboxRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		InitiateRepository:    NewInitiateRepository(db),
		ElderRepository:       NewElderRepository(db),
		MemberRepository:      NewMemberRepository(db),
		WarningRepository:     NewWarningRepository(db),
		TicketRepository:      NewTicketRepository(db),
		ChatSettingRepository: NewChatSettingRepository(db),
		OutboxRepository:      NewOutboxRepository(db),
	}
}
