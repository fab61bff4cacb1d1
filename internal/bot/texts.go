package bot

import (
	"fmt"
	"math/rand"

	"shadowlurkers-backend/internal/domain"
)

// Themed copy. Command replies are deterministic given store state; /quote is
// the one exception and draws uniformly from this fixed set.
var quotes = []string{
	"In the shadows, we find our true selves.",
	"The Silent Ledger records all. Every keystroke. Every whisper.",
	"Alone we are nothing. Together we are the Veil.",
	"Your digital footprint is eternal. Choose wisely.",
	"The Veil does not forget. It does not forgive.",
	"Knowledge is the only currency in the digital underworld.",
	"Precision eclipses brute force.",
	"Your OAT is your curse and your blessing.",
}

func randomQuote() string {
	return fmt.Sprintf("%q", quotes[rand.Intn(len(quotes))])
}

const codexText = `𓃼 THE CODEX OF SHADOWS 𓃼

I.  OpSec is sacred
II.  Knowledge is currency
III. Precision over brute force
IV.  No innocents
V.   Entry by merit only
VI.  Disputes via digital trials
VII. Footprints are eternal
VIII.Loyalty to the code
IX.  Innovate or stagnate
X.   We are a legion

"Violation of any tenet invites judgment."`

const (
	msgGenericError   = "☠ An error occurred in the Veil."
	msgOwnerOnly      = "☠ Only the Veil Keeper can use this command."
	msgElderOnly      = "☠ Only Elders may pass judgment."
	msgProtected      = "☬ That soul stands beyond your reach."
	msgLedgerDown     = "☠ The Silent Ledger is temporarily unreachable."
	msgNoTarget       = "☬ Reply to a soul or name a @handle."
	msgUnknownSoul    = "☬ That soul is not recorded in the Silent Ledger."
	msgOracleSilent   = "☠ The Oracle is silent. Try again later."
	msgNothingPending = "☬ No pending initiates. The Veil is quiet."
)

func welcomeText(firstName string, isOwner bool) string {
	if firstName == "" {
		firstName = "Wanderer"
	}
	standing := "☬ You are an uninitiated soul ☬"
	ownerCommands := ""
	if isOwner {
		standing = "☬ YOU ARE THE VEIL KEEPER ☬"
		ownerCommands = "\n/review    - View pending initiates\n/approve   - Accept a soul\n/reject    - Deny a soul\n/members   - List all shadows\n/stats     - Count the Veil\n/broadcast - Speak to all shadows"
	}
	return fmt.Sprintf(`╔══════════════════════════════════════════════╗
     𓃼 WELCOME TO THE SHADOW LURKERS 𓃼
╚══════════════════════════════════════════════╝

☬ The Veil recognizes you, %s.

%s

══════════════════════════════════════════════
COMMANDS:

/codex     - Read the ancient laws
/quote     - Receive shadow wisdom
/initiate  - Begin your journey
/mystatus  - Check your soul's record
/support   - Plead to the Veil Keeper%s

══════════════════════════════════════════════
"The shadows remember. The Veil watches."`, firstName, standing, ownerCommands)
}

func initiateText(frontendURL string) string {
	return fmt.Sprintf(`☬ INITIATION PROTOCOL ACTIVATED ☬

Your journey into the shadows begins now.

To complete your initiation:

1. Visit the Shadow Portal:
   %s

2. Complete the Ritual of Initiation
   - Choose your Shadow Name
   - Select your Gender Essence
   - Declare your Archetype
   - Describe your Weapons of Knowledge

3. Receive your Official Assigned Tag (𓃼)

4. Bind your Telegram to your shadow identity

Once complete, the Elders will review your application.
If found worthy, you shall be welcomed into the Veil.

"Step forward. The shadows await."`, frontendURL)
}

func statusText(in *domain.Initiate) string {
	verdict := "⏳ Awaiting judgment from the Elders"
	switch in.Status {
	case domain.InitiateStatusApproved:
		verdict = "☬ You are a shadow of the Veil ☬"
	case domain.InitiateStatusRejected:
		verdict = "☠ The Veil has denied you ☠"
	}
	return fmt.Sprintf(`╔══════════════════════════════════════════════╗
        𓃼 YOUR SHADOW PROFILE 𓃼
╚══════════════════════════════════════════════╝

👤 Name: %s
🏷️ Moniker: %s
⚔️ Role: %s
𓃼 OAT: %s
📜 Status: %s
📅 Initiated: %s

%s`, in.Name, in.Moniker, in.Role, in.OAT, in.Status, in.CreatedAt.Format("2006-01-02"), verdict)
}

func pendingCardText(in *domain.Initiate) string {
	return fmt.Sprintf(`Pending Initiate #%d
👤 Name: %s
📧 Email: %s
🔮 Telegram: %s
🏷️ Moniker: %s
⚔️ Role: %s
𓃼 OAT: %s
📅 Submitted: %s`, in.ID, in.Name, in.Email, in.Telegram, in.Moniker, in.Role, in.OAT,
		in.CreatedAt.Format("2006-01-02 15:04"))
}
