package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/models"
)

// Models returns all models that need migration, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.Pipeline{},
		&models.Company{},
		&models.Analysis{},
		&models.UserProfile{},
	}
}

// Run executes all database migrations.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle.
func runCustomMigrations(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	migrations := []func(*gorm.DB) error{
		addCascadeForeignKeys,
		addOwnerListIndex,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// addCascadeForeignKeys lets the database enforce pipeline -> company ->
// analysis cascades in addition to the repository transactions.
func addCascadeForeignKeys(db *gorm.DB) error {
	fks := []struct{ name, table, column, ref string }{
		{"fk_companies_pipeline", "companies", "pipeline_id", "pipelines"},
		{"fk_analyses_company", "analyses", "company_id", "companies"},
	}
	for _, fk := range fks {
		stmt := fmt.Sprintf(`
			DO $$
			BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[1]s') THEN
					ALTER TABLE %[2]s ADD CONSTRAINT %[1]s
						FOREIGN KEY (%[3]s) REFERENCES %[4]s(id) ON DELETE CASCADE;
				END IF;
			END $$;`, fk.name, fk.table, fk.column, fk.ref)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add foreign key %s: %w", fk.name, err)
		}
	}
	return nil
}

// addOwnerListIndex backs the owner's newest-first pipeline listing.
func addOwnerListIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_pipelines_user_created
		ON pipelines(user_id, created_at DESC)
	`).Error
}
