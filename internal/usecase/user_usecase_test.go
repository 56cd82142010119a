package usecase_test

import (
	"context"
	"errors"
	"testing"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// =====================
// Hooks
// =====================

func TestRoleGroupHook_RoleChanged_ReplacesGroups(t *testing.T) {
	groupRepo := new(GroupRepoMock)
	mgr := model.Group{ID: 2, Name: "Store Manager"}
	groupRepo.On("FindOrCreateByName", mock.Anything, "Store Manager").Return(mgr, nil)
	groupRepo.On("ReplaceUserGroups", mock.Anything, int64(5), []model.Group{mgr}).Return(nil)

	h := usecase.NewRoleGroupHook(groupRepo)
	err := h.AfterUserSave(context.Background(), usecase.UserChange{
		Before: model.User{ID: 5, Role: model.RoleSalesStaff},
		After:  model.User{ID: 5, Role: model.RoleStoreManager},
	})
	require.NoError(t, err)
	groupRepo.AssertExpectations(t)
}

func TestRoleGroupHook_SameRole_NoOp(t *testing.T) {
	groupRepo := new(GroupRepoMock)

	h := usecase.NewRoleGroupHook(groupRepo)
	err := h.AfterUserSave(context.Background(), usecase.UserChange{
		Before: model.User{ID: 5, Role: model.RoleSalesStaff, Phone: "1"},
		After:  model.User{ID: 5, Role: model.RoleSalesStaff, Phone: "2"},
	})
	require.NoError(t, err)
	groupRepo.AssertNotCalled(t, "FindOrCreateByName", mock.Anything, mock.Anything)
}

func TestRoleGroupHook_DBError(t *testing.T) {
	groupRepo := new(GroupRepoMock)
	groupRepo.On("FindOrCreateByName", mock.Anything, "Admin").Return(model.Group{}, errors.New("db down"))

	h := usecase.NewRoleGroupHook(groupRepo)
	err := h.AfterUserSave(context.Background(), usecase.UserChange{After: model.User{ID: 1, Role: model.RoleAdmin}, Created: true})
	assertErrContains(t, err, "db error")
}

func TestTokenVersionHook(t *testing.T) {
	cases := []struct {
		name   string
		change usecase.UserChange
		bump   bool
	}{
		{
			name:   "created",
			change: usecase.UserChange{After: model.User{ID: 1, Role: model.RoleSalesStaff, IsActive: true}, Created: true},
			bump:   false,
		},
		{
			name: "role changed",
			change: usecase.UserChange{
				Before: model.User{ID: 1, Role: model.RoleSalesStaff, IsActive: true},
				After:  model.User{ID: 1, Role: model.RoleAdmin, IsActive: true},
			},
			bump: true,
		},
		{
			name: "deactivated",
			change: usecase.UserChange{
				Before: model.User{ID: 1, Role: model.RoleSalesStaff, IsActive: true},
				After:  model.User{ID: 1, Role: model.RoleSalesStaff, IsActive: false},
			},
			bump: true,
		},
		{
			name: "reactivated",
			change: usecase.UserChange{
				Before: model.User{ID: 1, Role: model.RoleSalesStaff, IsActive: false},
				After:  model.User{ID: 1, Role: model.RoleSalesStaff, IsActive: true},
			},
			bump: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userRepo := new(UserRepoMock)
			if tc.bump {
				userRepo.On("IncrementTokenVersion", mock.Anything, int64(1)).Return(nil)
			}

			err := usecase.NewTokenVersionHook(userRepo).AfterUserSave(context.Background(), tc.change)
			require.NoError(t, err)

			if tc.bump {
				userRepo.AssertExpectations(t)
			} else {
				userRepo.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, mock.Anything)
			}
		})
	}
}

// =====================
// UserUsecase
// =====================

func newUserUC(userRepo *UserRepoMock, groupRepo *GroupRepoMock, auditRepo *AuditRepoMock, v *ValidatorMock) *usecase.UserUsecase {
	return usecase.NewUserUsecase(userRepo, auditRepo, v, fixedClock{t: testNow}, zap.NewNop(),
		usecase.NewRoleGroupHook(groupRepo), usecase.NewTokenVersionHook(userRepo))
}

func TestUserUsecase_Update_RoleChange_RunsHooksAndAudits(t *testing.T) {
	ctx := context.Background()

	userRepo := new(UserRepoMock)
	groupRepo := new(GroupRepoMock)
	auditRepo := new(AuditRepoMock)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, Role: model.RoleSalesStaff, IsActive: true}, nil).Once()
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleAccountant
	})).Return(nil)

	acc := model.Group{ID: 3, Name: "Accountant"}
	groupRepo.On("FindOrCreateByName", mock.Anything, "Accountant").Return(acc, nil)
	groupRepo.On("ReplaceUserGroups", mock.Anything, int64(5), []model.Group{acc}).Return(nil)
	userRepo.On("IncrementTokenVersion", mock.Anything, int64(5)).Return(nil)

	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateUser &&
			l.ResourceID == 5 &&
			l.CreatedAt.Equal(testNow)
	})).Return(nil)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID: 5, Role: model.RoleAccountant, IsActive: true, TokenVersion: 1, Groups: []model.Group{acc},
	}, nil).Once()

	uc := newUserUC(userRepo, groupRepo, auditRepo, new(ValidatorMock))

	out, err := uc.Update(ctx, 1, 5, usecase.UserUpdateInput{Role: strPtr("accountant")})
	require.NoError(t, err)
	assert.Equal(t, "accountant", out.Role)
	assert.Equal(t, 1, out.TokenVersion)
	assert.Equal(t, []string{"Accountant"}, out.Groups)

	userRepo.AssertExpectations(t)
	groupRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestUserUsecase_Update_InvalidRole(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, Role: model.RoleSalesStaff}, nil)

	uc := newUserUC(userRepo, new(GroupRepoMock), new(AuditRepoMock), new(ValidatorMock))

	_, err := uc.Update(context.Background(), 1, 5, usecase.UserUpdateInput{Role: strPtr("superuser")})
	assertErrContains(t, err, "invalid role")
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserUsecase_Update_CannotDeactivateSelf(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, Role: model.RoleAdmin, IsActive: true}, nil)

	uc := newUserUC(userRepo, new(GroupRepoMock), new(AuditRepoMock), new(ValidatorMock))

	_, err := uc.Update(context.Background(), 1, 1, usecase.UserUpdateInput{IsActive: boolPtr(false)})
	assertErrContains(t, err, "cannot deactivate yourself")
}

func TestUserUsecase_Update_EmailTaken(t *testing.T) {
	userRepo := new(UserRepoMock)
	v := new(ValidatorMock)

	userRepo.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, Email: "a@test.com", Role: model.RoleSalesStaff}, nil)
	v.On("ValidateEmail", mock.Anything, "b@test.com").Return(nil)
	userRepo.On("FindByEmail", mock.Anything, "b@test.com").Return(&model.User{ID: 6}, nil)

	uc := newUserUC(userRepo, new(GroupRepoMock), new(AuditRepoMock), v)

	_, err := uc.Update(context.Background(), 1, 5, usecase.UserUpdateInput{Email: strPtr("b@test.com")})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestUserUsecase_Update_NotFound(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(9)).Return(nil, nil)

	uc := newUserUC(userRepo, new(GroupRepoMock), new(AuditRepoMock), new(ValidatorMock))

	_, err := uc.Update(context.Background(), 1, 9, usecase.UserUpdateInput{})
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUserUsecase_List(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("List", mock.Anything, 1, 20).Return([]model.User{{ID: 1, Role: model.RoleAdmin}}, int64(1), nil)

	uc := newUserUC(userRepo, new(GroupRepoMock), new(AuditRepoMock), new(ValidatorMock))

	out, err := uc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "admin", out.Items[0].Role)

	_, err = uc.List(context.Background(), 0, 20)
	assertErrContains(t, err, "invalid page")
}
