package models

import "time"

type Debt struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	TotalAmount     float64    `json:"total_amount"`
	RemainingAmount float64    `json:"remaining_amount"`
	InterestRate    *float64   `json:"interest_rate"`
	MinimumPayment  *float64   `json:"minimum_payment"`
	DueDate         *time.Time `json:"due_date"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

type DebtPayment struct {
	ID          string    `json:"id"`
	DebtID      string    `json:"debt_id"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
}
