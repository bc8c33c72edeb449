package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kamy/api/internal/middleware"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

type GroupsHandler struct {
	Groups *services.GroupService
}

func NewGroupsHandler(groups *services.GroupService) *GroupsHandler {
	return &GroupsHandler{Groups: groups}
}

type createGroupRequest struct {
	Name string `json:"name" validate:"min=2"`
}

type addMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *createGroupRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *addMemberRequest) normalize() {
	r.Email = services.NormalizeEmail(r.Email)
}

type groupResponse struct {
	Group groupDTO `json:"group"`
}

type groupsResponse struct {
	Groups []groupDTO `json:"groups"`
}

type memberResponse struct {
	Member memberDTO `json:"member"`
}

type membersResponse struct {
	Members []memberDTO `json:"members"`
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	summaries, err := h.Groups.ListForUser(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "group_list_failed", err)
	}

	groups := make([]groupDTO, len(summaries))
	for i := range summaries {
		groups[i] = newGroupDTO(&summaries[i])
	}
	return utils.JSON(c, fiber.StatusOK, groupsResponse{Groups: groups})
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	var req createGroupRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	userID := middleware.CurrentUserID(c)
	summary, err := h.Groups.Create(c.UserContext(), userID, req.Name)
	if err != nil {
		return respondError(c, "group_create_failed", err)
	}

	logger.InfoWithUser(userID.String(), "group_created", map[string]interface{}{
		"group_id":   summary.Group.ID.String(),
		"group_name": summary.Group.Name,
	})

	return utils.JSON(c, fiber.StatusCreated, groupResponse{Group: newGroupDTO(summary)})
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	summary, err := h.Groups.Get(c.UserContext(), pathID(c, "id"), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "group_load_failed", err)
	}
	return utils.JSON(c, fiber.StatusOK, groupResponse{Group: newGroupDTO(summary)})
}

func (h *GroupsHandler) Members(c *fiber.Ctx) error {
	members, err := h.Groups.Members(c.UserContext(), pathID(c, "id"), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "group_members_failed", err)
	}

	out := make([]memberDTO, len(members))
	for i := range members {
		out[i] = newMemberDTO(&members[i])
	}
	return utils.JSON(c, fiber.StatusOK, membersResponse{Members: out})
}

func (h *GroupsHandler) AddMember(c *fiber.Ctx) error {
	var req addMemberRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	groupID := pathID(c, "id")
	userID := middleware.CurrentUserID(c)
	member, err := h.Groups.AddMember(c.UserContext(), groupID, userID, req.Email)
	if err != nil {
		return respondError(c, "group_member_add_failed", err)
	}

	logger.InfoWithUser(userID.String(), "group_member_added", map[string]interface{}{
		"group_id":  groupID.String(),
		"member_id": member.ID.String(),
	})

	return utils.JSON(c, fiber.StatusCreated, memberResponse{Member: newMemberDTO(member)})
}
