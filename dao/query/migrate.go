package query

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/erd-lab/procatalog/dao/model"
)

// AllModels lists every table in dependency order.
func AllModels() []any {
	return []any{
		&model.Account{},
		&model.ProcessStatus{},
		&model.ProcessPhase{},
		&model.Department{},
		&model.Process{},
		&model.Customization{},
		&model.Task{},
	}
}

// AutoMigrate creates the full schema, including the customization scope
// index that cannot be expressed in struct tags.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return err
	}
	return createScopeIndex(db)
}

// createScopeIndex enforces one customization row per scope triple. The
// COALESCE makes NULL departments collide, which a plain column index does
// not on engines that treat NULLs as distinct; the upsert path targets this
// index with ON CONFLICT.
func createScopeIndex(db *gorm.DB) error {
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_customization_scope
		ON customizations (process_id, country_code, COALESCE(department_id, 0))`).Error
}

// Migrate brings the schema up to date. The initial schema is created via
// AutoMigrate; later changes get their own migration entries.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// Customizations originally carried only a country code; the
			// department scope axis was added later.
			ID: "202508-customization-department",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.Customization{})
			},
			Rollback: func(tx *gorm.DB) error {
				if !tx.Migrator().HasColumn(&model.Customization{}, "department_id") {
					return nil
				}
				return tx.Migrator().DropColumn(&model.Customization{}, "department_id")
			},
		},
		{
			// The column-based scope index let concurrent upserts insert
			// duplicate NULL-department triples; replace it with the
			// COALESCE expression index.
			ID: "202509-customization-scope-index",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`DROP INDEX IF EXISTS idx_customization_scope`).Error; err != nil {
					return err
				}
				return createScopeIndex(tx)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP INDEX IF EXISTS idx_customization_scope`).Error
			},
		},
	})

	m.InitSchema(AutoMigrate)

	return m.Migrate()
}
