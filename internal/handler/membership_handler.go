package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop/internal/middleware"
	"repairshop/internal/permission"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

// InviteMember invites a registered user into the resolved
// organization. The caller needs the manage_users capability, enforced
// by route middleware.
func InviteMember(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordMembershipOperation("invite")

	tc := middleware.TenantContext(c)
	inviterID := middleware.UserID(c)

	var req struct {
		Email string          `json:"email"`
		Role  permission.Role `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invite request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	membership, err := manager(c).InviteMember(tc.Tenant.ID, req.Email, req.Role, inviterID)
	if err != nil {
		prometheus.RecordTenantError("invite_failed")
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Invitation sent",
		"membership": membership,
	})
}

// ListPendingInvitations lists the caller's pending invitations across
// all organizations.
func ListPendingInvitations(c echo.Context) error {
	prometheus.RecordMembershipOperation("list_pending")

	userID := middleware.UserID(c)
	infos, err := manager(c).PendingInvitations(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, infos)
}

// AcceptInvitation accepts one of the caller's pending invitations.
func AcceptInvitation(c echo.Context) error {
	prometheus.RecordMembershipOperation("accept")

	membershipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	membership, err := manager(c).AcceptInvitation(uint(membershipID), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Invitation accepted",
		"membership": membership,
	})
}

// DeclineInvitation declines one of the caller's pending invitations.
// The invitation is removed entirely.
func DeclineInvitation(c echo.Context) error {
	prometheus.RecordMembershipOperation("decline")

	membershipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := manager(c).DeclineInvitation(uint(membershipID), middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Invitation declined"})
}
