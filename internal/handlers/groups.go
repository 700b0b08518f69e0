package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/internal/models"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type GroupHandler struct {
	DB *gorm.DB
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{DB: db}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

type joinGroupRequest struct {
	GroupID string `json:"groupId"`
}

// memberRow is one entry of a group's member listing.
type memberRow struct {
	UserID uuid.UUID                  `json:"userId"`
	Name   string                     `json:"name"`
	Email  string                     `json:"email"`
	Role   models.GroupMembershipRole `json:"role"`
}

// Create creates a group and makes the creator its admin member, in one
// transaction.
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "group name is required")
	}

	group := models.Group{
		Name:        req.Name,
		CreatedByID: user.ID,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		membership := models.GroupMembership{
			UserID:  user.ID,
			GroupID: group.ID,
			Role:    models.GroupRoleAdmin,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "group_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create group")
	}

	logger.InfoWithUser(user.ID.String(), "group_created", map[string]interface{}{
		"group_id": group.ID.String(),
	})
	return utils.Success(c, fiber.StatusCreated, group)
}

// My lists the groups the requesting user belongs to.
func (h *GroupHandler) My(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	groups := make([]models.Group, 0)
	err := h.DB.
		Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
		Where("group_memberships.user_id = ?", user.ID).
		Order("groups.created_at ASC").
		Find(&groups).Error
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "group_list_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to list groups")
	}

	return utils.Success(c, fiber.StatusOK, groups)
}

// Join adds the requesting user to a group as a regular member. Joining a
// group the user is already in succeeds without creating a second
// membership.
func (h *GroupHandler) Join(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	var req joinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	groupID, ok := parseUUID(req.GroupID)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var group models.Group
	if err := h.DB.First(&group, "id = ?", groupID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}

	var existing models.GroupMembership
	err := h.DB.Where("user_id = ? AND group_id = ?", user.ID, groupID).First(&existing).Error
	if err == nil {
		return utils.Success(c, fiber.StatusOK, existing)
	}

	membership := models.GroupMembership{
		UserID:  user.ID,
		GroupID: groupID,
		Role:    models.GroupRoleMember,
	}
	if err := h.DB.Create(&membership).Error; err != nil {
		logger.ErrorWithUser(user.ID.String(), "group_join_failed", err, map[string]interface{}{
			"group_id": groupID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to join group")
	}

	logger.InfoWithUser(user.ID.String(), "group_joined", map[string]interface{}{
		"group_id": groupID.String(),
	})
	return utils.Success(c, fiber.StatusCreated, membership)
}

// Get returns one group. Only members may see it.
func (h *GroupHandler) Get(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	groupID, ok := parseUUID(c.Params("id"))
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var group models.Group
	if err := h.DB.First(&group, "id = ?", groupID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}

	if _, err := h.getMembership(user.ID, groupID); err != nil {
		return utils.Error(c, fiber.StatusForbidden, "not a member of this group")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

// Members lists a group's members with their roles. Only members may see
// the list.
func (h *GroupHandler) Members(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	groupID, ok := parseUUID(c.Params("id"))
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if err := h.DB.First(&models.Group{}, "id = ?", groupID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}

	if _, err := h.getMembership(user.ID, groupID); err != nil {
		return utils.Error(c, fiber.StatusForbidden, "not a member of this group")
	}

	members := make([]memberRow, 0)
	err := h.DB.
		Table("group_memberships").
		Select("users.id AS user_id, users.name, users.email, group_memberships.role").
		Joins("JOIN users ON users.id = group_memberships.user_id").
		Where("group_memberships.group_id = ?", groupID).
		Order("users.name ASC").
		Scan(&members).Error
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "group_members_failed", err, map[string]interface{}{
			"group_id": groupID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to list members")
	}

	return utils.Success(c, fiber.StatusOK, members)
}

func (h *GroupHandler) getMembership(userID, groupID uuid.UUID) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := h.DB.Where("user_id = ? AND group_id = ?", userID, groupID).First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
