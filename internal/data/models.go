package data

import (
	"database/sql"
	"errors"
)

var ErrRecordNotFound = errors.New("record not found")
var ErrEditConflict = errors.New("edit conflict")

type Models struct {
	Matches       MatchModel
	Fixtures      FixtureModel
	Finance       FinanceModel
	Subscriptions SubscriptionModel
	Pins          PinModel
}

func NewModels(initDb *sql.DB) Models {
	return Models{
		Matches:       MatchModel{db: initDb},
		Fixtures:      FixtureModel{db: initDb},
		Finance:       FinanceModel{db: initDb},
		Subscriptions: SubscriptionModel{db: initDb},
		Pins:          PinModel{db: initDb},
	}
}
