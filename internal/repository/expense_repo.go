package repository

import (
	"database/sql"
	"fmt"

	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/pkg/database"
	"go.uber.org/zap"
)

// ExpenseRepository handles expense database operations
type ExpenseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *database.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores an expense and its line items in a single transaction.
func (r *ExpenseRepository) Create(expense *models.Expense) error {
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(
			`INSERT INTO expenses (user_id, vendor, amount, date, category, image_path)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			expense.UserID,
			expense.Vendor,
			expense.Amount,
			expense.Date,
			expense.Category,
			expense.ImagePath,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		expense.ID = id

		for i := range expense.Items {
			item := &expense.Items[i]
			itemResult, err := tx.Exec(
				`INSERT INTO line_items (expense_id, item_name, quantity, unit_price, total_price)
				 VALUES (?, ?, ?, ?, ?)`,
				id,
				item.Name,
				item.Quantity,
				item.UnitPrice,
				item.TotalPrice,
			)
			if err != nil {
				return fmt.Errorf("failed to insert line item: %w", err)
			}
			itemID, err := itemResult.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
			item.ID = itemID
			item.ExpenseID = id
		}

		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return err
	}

	return nil
}

// GetByID fetches an expense with its line items. The user id guards against
// reading another user's records.
func (r *ExpenseRepository) GetByID(id, userID int64) (*models.Expense, error) {
	query := `
		SELECT id, user_id, vendor, amount, date, category, COALESCE(image_path, ''), created_at
		FROM expenses
		WHERE id = ? AND user_id = ?
	`

	var expense models.Expense
	err := r.db.QueryRow(query, id, userID).Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Vendor,
		&expense.Amount,
		&expense.Date,
		&expense.Category,
		&expense.ImagePath,
		&expense.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	items, err := r.getLineItems(expense.ID)
	if err != nil {
		return nil, err
	}
	expense.Items = items

	return &expense, nil
}

// ListByUser returns all of a user's expenses, newest date first, without
// line items.
func (r *ExpenseRepository) ListByUser(userID int64) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, vendor, amount, date, category, COALESCE(image_path, ''), created_at
		FROM expenses
		WHERE user_id = ?
		ORDER BY date DESC, id DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Vendor, &e.Amount, &e.Date, &e.Category, &e.ImagePath, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Delete removes an expense and its line items. Returns ErrNotFound when the
// expense does not belong to the user.
func (r *ExpenseRepository) Delete(id, userID int64) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		// ON DELETE CASCADE is not guaranteed when foreign keys are off, so
		// delete line items explicitly.
		if _, err := tx.Exec(`DELETE FROM line_items WHERE expense_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CategoryTotals returns per-category spend for a month ("2006-01" format).
func (r *ExpenseRepository) CategoryTotals(userID int64, month string) ([]models.CategoryTotal, error) {
	query := `
		SELECT category, SUM(amount)
		FROM expenses
		WHERE user_id = ? AND date LIKE ? || '-%'
		GROUP BY category
		ORDER BY SUM(amount) DESC
	`

	rows, err := r.db.Query(query, userID, month)
	if err != nil {
		r.logger.Error("Failed to get category totals", zap.Error(err))
		return nil, fmt.Errorf("failed to get category totals: %w", err)
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var t models.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// MonthTotal returns total spend for a month ("2006-01" format).
func (r *ExpenseRepository) MonthTotal(userID int64, month string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = ? AND date LIKE ? || '-%'
	`

	var total float64
	if err := r.db.QueryRow(query, userID, month).Scan(&total); err != nil {
		r.logger.Error("Failed to get month total", zap.Error(err))
		return 0, fmt.Errorf("failed to get month total: %w", err)
	}
	return total, nil
}

// ListByMonth returns a month's expenses with line items, oldest first. Used
// by the report exporter.
func (r *ExpenseRepository) ListByMonth(userID int64, month string) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, vendor, amount, date, category, COALESCE(image_path, ''), created_at
		FROM expenses
		WHERE user_id = ? AND date LIKE ? || '-%'
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.Query(query, userID, month)
	if err != nil {
		r.logger.Error("Failed to list month expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list month expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Vendor, &e.Amount, &e.Date, &e.Category, &e.ImagePath, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expenses {
		items, err := r.getLineItems(expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Items = items
	}
	return expenses, nil
}

func (r *ExpenseRepository) getLineItems(expenseID int64) ([]models.LineItem, error) {
	query := `
		SELECT id, expense_id, item_name, quantity, unit_price, total_price
		FROM line_items
		WHERE expense_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, expenseID)
	if err != nil {
		r.logger.Error("Failed to get line items", zap.Error(err))
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.ExpenseID, &item.Name, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
