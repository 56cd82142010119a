package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingGormRepository struct {
	db *gorm.DB
}

func NewSettingGormRepository(db *gorm.DB) repo.SettingRepository {
	return &settingGormRepository{db: db}
}

// id=1を読み、無ければデフォルトで作る（同時作成はON CONFLICTで吸収）
func (r *settingGormRepository) GetOrCreate(ctx context.Context) (model.SystemSetting, error) {
	def := model.DefaultSystemSetting()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&def).Error; err != nil {
		return model.SystemSetting{}, err
	}

	var s model.SystemSetting
	if err := r.db.WithContext(ctx).First(&s, model.SystemSettingID).Error; err != nil {
		return model.SystemSetting{}, err
	}
	return s, nil
}

func (r *settingGormRepository) Save(ctx context.Context, s model.SystemSetting) error {
	s.ID = model.SystemSettingID
	return r.db.WithContext(ctx).Save(&s).Error
}
