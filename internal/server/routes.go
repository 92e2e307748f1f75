package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agribrazil/leadchat/internal/chat"
	"github.com/agribrazil/leadchat/internal/lead"
	"github.com/agribrazil/leadchat/internal/models"
	"github.com/agribrazil/leadchat/internal/storage"
)

func registerRoutes(router *gin.Engine, opts Options) {
	api := router.Group("/api")

	api.POST("/chatbot/message", handleSendMessage(opts.Chat))
	api.GET("/chatbot/history", handleGetHistory(opts.Chat))
	api.POST("/chatbot/lead", handleSubmitLead(opts.Leads))

	// Operator endpoints.
	api.GET("/leads", handleListLeads(opts.Leads, opts.Logger))
	api.PATCH("/leads/:id/status", handleUpdateLeadStatus(opts.Leads))
	api.PATCH("/conversations/:id/status", handleUpdateConversationStatus(opts.Chat))
}

type sendMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func handleSendMessage(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, svc.SendMessage(c.Request.Context(), req.SessionID, req.Message))
	}
}

type historyMessage struct {
	ID        int64       `json:"id"`
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

func handleGetHistory(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("sessionId")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
			return
		}

		messages := svc.GetHistory(c.Request.Context(), sessionID)
		out := make([]historyMessage, 0, len(messages))
		for _, msg := range messages {
			out = append(out, historyMessage{
				ID:        msg.ID,
				Role:      msg.Role,
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"messages": out})
	}
}

type submitLeadRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	ProjectType string `json:"projectType"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
	Message     string `json:"message"`
	SessionID   string `json:"sessionId" binding:"required"`
}

func handleSubmitLead(svc *lead.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitLeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		result := svc.Submit(c.Request.Context(), lead.Submission{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			ProjectType: req.ProjectType,
			Budget:      req.Budget,
			Timeline:    req.Timeline,
			Message:     req.Message,
			SessionID:   req.SessionID,
		})
		c.JSON(http.StatusOK, result)
	}
}

func handleListLeads(svc *lead.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		leads, err := svc.List(c.Request.Context(), 100)
		if err != nil {
			logger.Error("Failed to list leads", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"leads":   []*models.Lead{},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"leads":   leads,
		})
	}
}

type updateLeadStatusRequest struct {
	Status models.LeadStatus `json:"status" binding:"required"`
}

func handleUpdateLeadStatus(svc *lead.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid lead id"})
			return
		}

		var req updateLeadStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		if err := svc.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
			var verr *lead.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": verr.Reason})
			case errors.Is(err, storage.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "lead not found"})
			default:
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "failed to update lead"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

type updateConversationStatusRequest struct {
	Status models.ConversationStatus `json:"status" binding:"required"`
}

// handleUpdateConversationStatus closes or converts a conversation,
// used by the operator workflow when a chat yields a lead.
func handleUpdateConversationStatus(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid conversation id"})
			return
		}

		var req updateConversationStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		if err := svc.CloseConversation(c.Request.Context(), id, req.Status); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "conversation not found"})
			case errors.Is(err, chat.ErrPersistenceUnavailable):
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "failed to update conversation"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
