package models

import (
	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&ProductionInfo{},
		&EmployeeWorklog{},
	)
	utils.ErrorPanic(err)
}
