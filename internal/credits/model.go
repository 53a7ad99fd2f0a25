package credits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is one EduCredits ledger entry. A (user, reason, ref) triple appears at most once.
type Transaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserUID   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_credit_award" json:"user_uid"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_award" json:"reason"`
	RefID     string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_credit_award" json:"ref_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "credit_transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Balance is the response of GET /credits/me.
type Balance struct {
	EduCredits   int           `json:"edu_credits"`
	Transactions []Transaction `json:"transactions"`
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EduCredits int    `json:"edu_credits"`
}
