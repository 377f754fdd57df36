package handlers

import (
	"net/http"
	"waste-collection-service/internal/api/dto"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
)

type UserHandler struct {
	base
	Users ports.UserRepository
}

func NewUserHandler(users ports.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{base: base{Logger: logger}, Users: users}
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "user stats", err)
		return
	}

	u, err := h.Users.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, "user stats", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, dto.UserStatsResponse{
		UserID:          u.UserID,
		Name:            u.Name,
		TrustScore:      dto.Round(u.TrustScore, 2),
		TotalReports:    u.TotalReports,
		AccurateReports: u.AccurateReports,
		AccuracyRate:    dto.Round(u.AccuracyRate(), 1),
	})
}

func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 10, 100)
	if err != nil {
		h.fail(w, r, "leaderboard", err)
		return
	}

	users, err := h.Users.Leaderboard(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "leaderboard", err)
		return
	}

	res := dto.LeaderboardResponse{Leaderboard: make([]dto.LeaderboardEntry, 0, len(users))}
	for i, u := range users {
		res.Leaderboard = append(res.Leaderboard, dto.LeaderboardEntry{
			Rank:         i + 1,
			UserID:       u.UserID,
			Name:         u.Name,
			TrustScore:   dto.Round(u.TrustScore, 2),
			TotalReports: u.TotalReports,
		})
	}

	h.writeJSON(w, r, http.StatusOK, res)
}
