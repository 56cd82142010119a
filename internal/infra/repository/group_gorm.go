package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
	domainrepo "jewelrystore/internal/repository"

	"gorm.io/gorm"
)

type groupGormRepository struct {
	db *gorm.DB
}

func NewGroupGormRepository(db *gorm.DB) domainrepo.GroupRepository {
	return &groupGormRepository{db: db}
}

func (r *groupGormRepository) FindOrCreateByName(ctx context.Context, name string) (model.Group, error) {
	g := model.Group{Name: name}
	err := r.db.WithContext(ctx).Where(model.Group{Name: name}).FirstOrCreate(&g).Error
	if err != nil {
		return model.Group{}, err
	}
	return g, nil
}

func (r *groupGormRepository) ReplaceUserGroups(ctx context.Context, userID int64, groups []model.Group) error {
	u := model.User{ID: userID}
	return r.db.WithContext(ctx).Model(&u).Association("Groups").Replace(groups)
}
