package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundcu/benefit-engine/internal/model"
)

type transactionRequest struct {
	ID               string    `json:"id" binding:"required"`
	Date             time.Time `json:"date" binding:"required"`
	MemberID         string    `json:"member_id" binding:"required"`
	MerchantName     string    `json:"merchant_name" binding:"required"`
	MerchantLocation string    `json:"merchant_location"`
	CardID           string    `json:"card_id" binding:"required"`
	RawCategoryHint  string    `json:"raw_category_hint"`
	AmountMinorUnits int64     `json:"amount_minor_units" binding:"required,gt=0"`
}

type ingestRequest struct {
	Transactions []transactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

func (s *Server) ingestTransactions(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txns := make([]model.Transaction, len(req.Transactions))
	for i, r := range req.Transactions {
		txns[i] = model.Transaction{
			ID:               r.ID,
			Date:             r.Date,
			MemberID:         r.MemberID,
			MerchantName:     r.MerchantName,
			MerchantLocation: r.MerchantLocation,
			CardID:           r.CardID,
			RawCategoryHint:  r.RawCategoryHint,
			AmountMinorUnits: r.AmountMinorUnits,
		}
		txns[i].Hash = txns[i].GenerateHash()
	}

	stats, err := s.engine.IngestTransactions(c.Request.Context(), txns)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"received":       stats.TotalReceived,
		"newly_ingested": stats.NewlyIngested,
		"duplicates":     stats.Duplicates,
		"alerts_emitted": stats.AlertsEmitted,
	})
}

func (s *Server) getRecommendations(c *gin.Context) {
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	results, err := s.engine.Recommend(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		writeError(c, err)
		return
	}

	type recommendation struct {
		Category            model.Category `json:"category"`
		CurrentCardID       string         `json:"current_card_id"`
		CurrentCardName     string         `json:"current_card_name,omitempty"`
		RecommendedCardID   string         `json:"recommended_card_id"`
		RecommendedCardName string         `json:"recommended_card_name,omitempty"`
		MonthlySpend        int64          `json:"monthly_spend_minor_units"`
		CurrentReward       int64          `json:"current_reward_minor_units"`
		PotentialReward     int64          `json:"potential_reward_minor_units"`
		Delta               int64          `json:"delta_minor_units"`
		Optimized           bool           `json:"optimized"`
	}
	out := make([]recommendation, len(results))
	for i := range results {
		r := &results[i]
		out[i] = recommendation{
			Category:            r.Category,
			CurrentCardID:       r.CurrentCardID,
			CurrentCardName:     r.CurrentCardName,
			RecommendedCardID:   r.RecommendedCardID,
			RecommendedCardName: r.RecommendedCardName,
			MonthlySpend:        r.MonthlySpendMinorUnits,
			CurrentReward:       r.CurrentRewardMinorUnits,
			PotentialReward:     r.PotentialRewardMinorUnits,
			Delta:               r.DeltaMinorUnits(),
			Optimized:           r.Optimized(),
		}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": out})
}

func (s *Server) getCardComparison(c *gin.Context) {
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	comparisons, err := s.engine.CompareCards(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comparisons": comparisons})
}

func (s *Server) getUnusedPerks(c *gin.Context) {
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	// stale_after overrides the configured staleness window, e.g. "720h".
	var staleAfter time.Duration
	if raw := c.Query("stale_after"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stale_after must be a positive duration"})
			return
		}
		staleAfter = parsed
	}

	perks, err := s.engine.UnusedPerks(c.Request.Context(), c.Param("id"), asOf, staleAfter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"perks": perks})
}

func (s *Server) getAlerts(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC 3339"})
			return
		}
		since = parsed
	}
	alerts, err := s.engine.Alerts(c.Request.Context(), c.Param("id"), since)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *Server) getScore(c *gin.Context) {
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	snapshot, err := s.engine.Score(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type perkUsageRequest struct {
	Timestamp     time.Time `json:"timestamp" binding:"required"`
	TransactionID string    `json:"transaction_id"`
}

func (s *Server) recordPerkUsage(c *gin.Context) {
	var req perkUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.RecordPerkUsage(c.Request.Context(), c.Param("id"), req.Timestamp, req.TransactionID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

func (s *Server) actOnAlert(c *gin.Context) {
	if err := s.engine.ActOnAlert(c.Request.Context(), c.Param("id"), time.Now().UTC()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acted"})
}

// parseAsOf reads the optional as_of query parameter, defaulting to now.
func parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), true
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be RFC 3339"})
		return time.Time{}, false
	}
	return asOf, true
}
