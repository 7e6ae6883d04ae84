package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// AbandonedCart is one checkout session that had items but no completed
// order. The checkout token is the natural key; repeated checkout webhooks
// for the same token update the record in place. The per-stage call flags
// are denormalized copies of CallLog state and are never read by the
// scheduler.
type AbandonedCart struct {
	ID         uint   `gorm:"primaryKey"`
	CheckoutID int64  `gorm:"index"`
	Token      string `gorm:"size:64;uniqueIndex;not null"` // checkout token from the platform

	CustomerPhone string `gorm:"size:32;index"`
	CustomerEmail string `gorm:"size:255"`
	CustomerName  string `gorm:"size:255"`

	TotalPrice float64
	Currency   string `gorm:"size:8"`

	LineItems            datatypes.JSON
	AbandonedCheckoutURL string `gorm:"size:2048"`

	Call2Hour    bool       `gorm:"column:call_2_hour;not null;default:false"`
	Call2HourAt  *time.Time `gorm:"column:call_2_hour_at"`
	Call4Hour    bool       `gorm:"column:call_4_hour;not null;default:false"`
	Call4HourAt  *time.Time `gorm:"column:call_4_hour_at"`
	Call8Hour    bool       `gorm:"column:call_8_hour;not null;default:false"`
	Call8HourAt  *time.Time `gorm:"column:call_8_hour_at"`
	Call16Hour   bool       `gorm:"column:call_16_hour;not null;default:false"`
	Call16HourAt *time.Time `gorm:"column:call_16_hour_at"`
	Call24Hour   bool       `gorm:"column:call_24_hour;not null;default:false"`
	Call24HourAt *time.Time `gorm:"column:call_24_hour_at"`

	IsCompleted bool       `gorm:"index;not null;default:false"`
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DecodeLineItems unmarshals the stored line items. A malformed or empty
// column yields nil, never an error; callers fall back to generic wording.
func (c *AbandonedCart) DecodeLineItems() []LineItem {
	if len(c.LineItems) == 0 {
		return nil
	}
	var items []LineItem
	if err := json.Unmarshal(c.LineItems, &items); err != nil {
		return nil
	}
	return items
}

// CallLog holds the per-cart call campaign state, one row per cart. It is
// the source of truth for "has stage N been attempted"; stage counters move
// 0 to 1 exactly once and are never decremented.
type CallLog struct {
	ID              uint   `gorm:"primaryKey"`
	AbandonedCartID uint   `gorm:"uniqueIndex;not null"`
	PhoneNumber     string `gorm:"size:32"`

	Call2Hour  int `gorm:"column:call_2_hour;not null;default:0"`
	Call4Hour  int `gorm:"column:call_4_hour;not null;default:0"`
	Call8Hour  int `gorm:"column:call_8_hour;not null;default:0"`
	Call16Hour int `gorm:"column:call_16_hour;not null;default:0"`
	Call24Hour int `gorm:"column:call_24_hour;not null;default:0"`

	VapiResponse datatypes.JSON // raw result of the last call attempt
	Success      bool           `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NextStage returns the first stage that has not been attempted yet, in
// fixed ascending time order. ok is false once all five have been sent.
func (l *CallLog) NextStage() (stage CallStage, ok bool) {
	switch {
	case l.Call2Hour == 0:
		return Stage2Hour, true
	case l.Call4Hour == 0:
		return Stage4Hour, true
	case l.Call8Hour == 0:
		return Stage8Hour, true
	case l.Call16Hour == 0:
		return Stage16Hour, true
	case l.Call24Hour == 0:
		return Stage24Hour, true
	}
	return 0, false
}

// StageSent reports whether the given stage has been attempted.
func (l *CallLog) StageSent(stage CallStage) bool {
	switch stage {
	case Stage2Hour:
		return l.Call2Hour != 0
	case Stage4Hour:
		return l.Call4Hour != 0
	case Stage8Hour:
		return l.Call8Hour != 0
	case Stage16Hour:
		return l.Call16Hour != 0
	case Stage24Hour:
		return l.Call24Hour != 0
	}
	return false
}

// Order is an append-only record of a completed purchase. The denormalized
// checkout token links it back to the abandoned cart it recovers.
type Order struct {
	OrderID       int64  `gorm:"primaryKey"` // platform order id
	CheckoutToken string `gorm:"size:64;index"`
	CustomerEmail string `gorm:"size:255"`
	CustomerPhone string `gorm:"size:32"`
	TotalPrice    float64
	Currency      string `gorm:"size:8"`
	Payload       datatypes.JSON
	CreatedAt     time.Time
}

// Product mirrors a platform catalog entry. Upserted on create/update
// events and hard-deleted on delete events.
type Product struct {
	ProductID   int64  `gorm:"primaryKey"` // platform product id
	Title       string `gorm:"size:512;not null"`
	Handle      string `gorm:"size:255"`
	Description string
	Vendor      string `gorm:"size:255"`
	ProductType string `gorm:"size:255"`
	Tags        string
	Status      string `gorm:"size:32;index"`
	Price       string `gorm:"size:32"`
	Images      datatypes.JSON
	Variants    datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WebhookCall is the raw audit log of every inbound webhook. Writes are
// best effort and must never block ingestion.
type WebhookCall struct {
	ID        uint   `gorm:"primaryKey"`
	Topic     string `gorm:"size:64;index"`
	Payload   datatypes.JSON
	Headers   datatypes.JSON
	CreatedAt time.Time
}
