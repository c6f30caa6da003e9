package db

import (
	"videoserver/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

func Init() {
	var (
		db  *gorm.DB
		err error
	)
	gormConfig := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	if config.MYSQL_DSN != "" {
		db, err = gorm.Open(mysql.Open(config.MYSQL_DSN), gormConfig)
	} else {
		file := config.SQLITE_FILE
		if file == "" {
			file = "videoserver.db"
		}
		db, err = gorm.Open(sqlite.Open(file), gormConfig)
	}
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}

// InitTest points Instance at an in-memory SQLite database.
// cache=shared keeps all pooled connections on the same database; a
// single open connection keeps concurrent writers from tripping over
// SQLite table locks.
func InitTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)
	Instance = db
}
