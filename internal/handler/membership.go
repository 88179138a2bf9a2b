package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garden-directory/internal/queue"
	"github.com/iliyamo/garden-directory/internal/repository"
	queue_publisher "github.com/iliyamo/garden-directory/internal/service"
)

// MembershipHandler bundles dependencies for join/leave and the
// membership listing endpoints. Publish is the event sink for
// successful joins; it is a field so tests can swap in a stub instead
// of a live broker.
type MembershipHandler struct {
	Users       *repository.UserRepo
	Gardens     *repository.GardenRepo
	Memberships *repository.MembershipRepo
	Publish     func(ctx context.Context, ev queue.MemberJoinedEvent) error
}

func NewMembershipHandler(u *repository.UserRepo, g *repository.GardenRepo, m *repository.MembershipRepo) *MembershipHandler {
	return &MembershipHandler{
		Users:       u,
		Gardens:     g,
		Memberships: m,
		Publish:     queue_publisher.PublishMemberJoined,
	}
}

type membershipResp struct {
	UserID   uint64    `json:"user_id"`
	GardenID uint64    `json:"garden_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Join adds the user given by the user_id query parameter to the
// garden in the path. Joining twice surfaces the membership
// uniqueness violation as a 400, not a raw storage error. The
// joinable flag is stored and served but deliberately not enforced
// here; see the garden listing semantics.
func (h *MembershipHandler) Join(c echo.Context) error {
	gardenID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Gardens.GetByID(ctx, gardenID)
	if err != nil {
		if errors.Is(err, repository.ErrGardenNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "garden not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	m, err := h.Memberships.Join(ctx, userID, gardenID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is already a member of this garden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
	}

	// Best effort: the join is committed, so a broker outage must not
	// fail the request. The publisher logs its own errors.
	ev := queue.MemberJoinedEvent{
		UserID:     u.ID,
		Username:   u.Username,
		GardenID:   g.ID,
		GardenName: g.Name,
		JoinedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		_ = h.Publish(pctx, ev)
	}()

	return c.JSON(http.StatusOK, membershipResp{UserID: m.UserID, GardenID: m.GardenID, JoinedAt: m.CreatedAt})
}

// Leave removes a membership. Leaving a garden never joined is a
// successful no-op reported through the removed flag.
func (h *MembershipHandler) Leave(c echo.Context) error {
	gardenID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	removed, err := h.Memberships.Leave(ctx, userID, gardenID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leave failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}

// GardensForUser lists the gardens a user has joined. An empty result
// is reported as 404 to match the directory's established surface.
func (h *MembershipHandler) GardensForUser(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	gardens, err := h.Memberships.GardensForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(gardens) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no gardens found for this user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": gardens})
}

// Members lists the members of a garden, with the same empty-as-404
// behavior as GardensForUser.
func (h *MembershipHandler) Members(c echo.Context) error {
	gardenID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.Memberships.MembersOfGarden(ctx, gardenID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(members) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no members found for this garden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": members})
}
