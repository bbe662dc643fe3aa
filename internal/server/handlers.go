package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/internal/repository"
	"github.com/snapledger/snapledger/internal/storage"
	"go.uber.org/zap"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and a password of at least 8 characters are required"})
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	user := &models.User{Email: req.Email, PasswordHash: hash}
	if err := s.users.Create(user); err != nil {
		// The unique index on email is the usual cause here.
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// handleScan accepts a multipart receipt upload, stores it, and returns the
// scan result plus the stored file name for later expense creation.
func (s *Server) handleScan(c *gin.Context) {
	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing receipt file"})
		return
	}

	if !storage.Allowed(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}

	storedName, err := s.files.Save(fileHeader.Filename, data)
	if err != nil {
		s.logger.Error("Failed to store upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	mimeType := mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
	if mimeType == "" {
		mimeType = fileHeader.Header.Get("Content-Type")
	}

	result, err := s.scanner.Scan(c.Request.Context(), data, mimeType)
	if err != nil {
		s.logger.Error("Scan failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not analyze receipt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receipt":    result.Receipt,
		"raw_text":   result.RawText,
		"source":     result.Source,
		"image_path": storedName,
	})
}

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.Categories})
}

type createExpenseRequest struct {
	Vendor    string              `json:"vendor" binding:"required"`
	Amount    float64             `json:"amount" binding:"required,gt=0"`
	Date      string              `json:"date" binding:"required"`
	Category  string              `json:"category" binding:"required"`
	ImagePath string              `json:"image_path"`
	Items     []createItemRequest `json:"items"`
}

type createItemRequest struct {
	Name       string   `json:"name" binding:"required"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	TotalPrice float64  `json:"total_price"`
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid expense: %v", err)})
		return
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		return
	}
	if !validCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	expense := &models.Expense{
		UserID:    currentUserID(c),
		Vendor:    req.Vendor,
		Amount:    req.Amount,
		Date:      req.Date,
		Category:  req.Category,
		ImagePath: req.ImagePath,
	}
	for _, item := range req.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		expense.Items = append(expense.Items, models.LineItem{
			Name:       item.Name,
			Quantity:   qty,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}

	if err := s.expenses.Create(expense); err != nil {
		s.logger.Error("Failed to create expense", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save expense"})
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(c *gin.Context) {
	expenses, err := s.expenses.ListByUser(currentUserID(c))
	if err != nil {
		s.logger.Error("Failed to list expenses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list expenses"})
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (s *Server) handleGetExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense id"})
		return
	}

	expense, err := s.expenses.GetByID(id, currentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to get expense", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get expense"})
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense id"})
		return
	}

	expense, err := s.expenses.GetByID(id, currentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	if err != nil {
		s.logger.Error("Failed to get expense", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}

	if err := s.expenses.Delete(id, currentUserID(c)); err != nil {
		s.logger.Error("Failed to delete expense", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}

	if expense.ImagePath != "" {
		if err := s.files.Delete(expense.ImagePath); err != nil {
			s.logger.Warn("Failed to delete receipt image", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

// handleDashboard returns a month's total spend and category breakdown.
// Month defaults to the current month.
func (s *Server) handleDashboard(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	userID := currentUserID(c)

	total, err := s.expenses.MonthTotal(userID, month)
	if err != nil {
		s.logger.Error("Failed to get month total", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	totals, err := s.expenses.CategoryTotals(userID, month)
	if err != nil {
		s.logger.Error("Failed to get category totals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}

	c.JSON(http.StatusOK, gin.H{
		"month":      month,
		"total":      total,
		"categories": totals,
	})
}

func (s *Server) handleMonthlyReport(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	userID := currentUserID(c)

	expenses, err := s.expenses.ListByMonth(userID, month)
	if err != nil {
		s.logger.Error("Failed to load report data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}
	totals, err := s.expenses.CategoryTotals(userID, month)
	if err != nil {
		s.logger.Error("Failed to load report totals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="expenses-%s.xlsx"`, month))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if err := s.exporter.WriteMonthly(c.Writer, month, expenses, totals); err != nil {
		s.logger.Error("Failed to write report", zap.Error(err))
	}
}

func monthParam(c *gin.Context) (string, bool) {
	month := c.Query("month")
	if month == "" {
		return time.Now().Format("2006-01"), true
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month must be YYYY-MM"})
		return "", false
	}
	return month, true
}

func validCategory(category string) bool {
	for _, c := range models.Categories {
		if c == category {
			return true
		}
	}
	return false
}
