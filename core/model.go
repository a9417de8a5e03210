package core

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"shiftinsight.com/shiftinsight/model"
)

// Models lists the warehouse tables in creation order; dimensions come before the fact table.
func Models() []any {
	return []any{
		&model.DimEmployee{},
		&model.DimClient{},
		&model.DimJob{},
		&model.DimShift{},
		&model.DimDate{},
		&model.FactShift{},
		&model.LoadRun{},
	}
}

type foreignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
}

var factForeignKeys = []foreignKey{
	{"fk_fact_shifts_employee", "employee_id", "dim_employees", "employee_id"},
	{"fk_fact_shifts_date", "date_id", "dim_dates", "date_id"},
	{"fk_fact_shifts_shift", "shift_id", "dim_shifts", "shift_id"},
	{"fk_fact_shifts_client", "client_id", "dim_clients", "client_id"},
	{"fk_fact_shifts_job", "job_id", "dim_jobs", "job_id"},
}

// Migrate creates missing tables, brings columns and indexes up to date and adds the fact table's
// foreign keys. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *gorm.DB, log *logrus.Entry) error {
	db = db.WithContext(ctx)
	migrator := db.Migrator()

	for _, m := range Models() {
		if migrator.HasTable(m) {
			continue
		}
		log.WithField("model", fmt.Sprintf("%T", m)).Info("creating table")
		if err := migrator.CreateTable(m); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	for _, fk := range factForeignKeys {
		if migrator.HasConstraint(&model.FactShift{}, fk.Name) {
			continue
		}
		log.WithField("constraint", fk.Name).Info("adding foreign key")
		stmt := fmt.Sprintf("ALTER TABLE `fact_shifts` ADD CONSTRAINT `%s` FOREIGN KEY (`%s`) REFERENCES `%s` (`%s`)",
			fk.Name, fk.Column, fk.RefTable, fk.RefColumn)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", fk.Name, err)
		}
	}

	return nil
}
