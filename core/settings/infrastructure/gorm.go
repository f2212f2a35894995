package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingModel struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value;type:text"`
}

func (SettingModel) TableName() string {
	return "settings_kv"
}

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&SettingModel{})
}

func (r *SettingsGormRepository) Get(ctx context.Context, key string) (string, error) {
	var m SettingModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return m.Value, nil
}

func (r *SettingsGormRepository) Set(ctx context.Context, key string, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&SettingModel{
		Key:   key,
		Value: value,
	}).Error
}

func (r *SettingsGormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&SettingModel{}, "key = ?", key).Error
}

func (r *SettingsGormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
