package models

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusProcessed  TransactionStatus = "processed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
	StatusReturned   TransactionStatus = "returned"
)

// Valid reports whether s is a status the backend accepts.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// EntryType distinguishes debit (DR) from credit (CR) entries.
type EntryType string

const (
	EntryDebit  EntryType = "DR"
	EntryCredit EntryType = "CR"
)

// Transaction is the combined DR/CR transaction record shown on the transactions screen.
type Transaction struct {
	ID              string            `json:"id"`
	OrganizationID  string            `json:"organizationId,omitempty"`
	TraceNumber     string            `json:"traceNumber,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	Status          TransactionStatus `json:"status"`
	EffectiveDate   string            `json:"effectiveDate,omitempty"`
	DRRoutingNumber string            `json:"drRoutingNumber,omitempty"`
	DRAccountNumber string            `json:"drAccountNumber,omitempty"`
	DRName          string            `json:"drName,omitempty"`
	CRRoutingNumber string            `json:"crRoutingNumber,omitempty"`
	CRAccountNumber string            `json:"crAccountNumber,omitempty"`
	CRName          string            `json:"crName,omitempty"`
	Description     string            `json:"description,omitempty"`
	SenderDetails   string            `json:"senderDetails,omitempty"`
	NachaFileID     string            `json:"nachaFileId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Entry is a single DR or CR leg of a transaction group.
type Entry struct {
	ID            string            `json:"id"`
	GroupID       string            `json:"groupId,omitempty"`
	EntryType     EntryType         `json:"entryType"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        TransactionStatus `json:"status"`
	RoutingNumber string            `json:"routingNumber,omitempty"`
	AccountNumber string            `json:"accountNumber,omitempty"`
	AccountName   string            `json:"accountName,omitempty"`
	EffectiveDate string            `json:"effectiveDate,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Group pairs a debit entry with its offsetting credit entry.
type Group struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organizationId,omitempty"`
	Amount         decimal.Decimal   `json:"amount"`
	Status         TransactionStatus `json:"status"`
	DREntry        *Entry            `json:"drEntry,omitempty"`
	CREntry        *Entry            `json:"crEntry,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// CreateTransactionRequest is the body of POST /transactions and POST /transactions/groups.
type CreateTransactionRequest struct {
	OrganizationID  string          `json:"organizationId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	EffectiveDate   string          `json:"effectiveDate"`
	DRRoutingNumber string          `json:"drRoutingNumber"`
	DRAccountNumber string          `json:"drAccountNumber"`
	DRName          string          `json:"drName"`
	CRRoutingNumber string          `json:"crRoutingNumber"`
	CRAccountNumber string          `json:"crAccountNumber"`
	CRName          string          `json:"crName"`
	Description     string          `json:"description,omitempty"`
}

type StatusUpdate struct {
	Status TransactionStatus `json:"status"`
	Reason string            `json:"reason,omitempty"`
}

// TransactionFilters narrows transaction, entry and group listings. The JSON form is part of
// the cache key, so every field is omitempty.
type TransactionFilters struct {
	Status         TransactionStatus `json:"status,omitempty"`
	OrganizationID string            `json:"organizationId,omitempty"`
	EffectiveDate  string            `json:"effectiveDate,omitempty"`
	StartDate      string            `json:"startDate,omitempty"`
	EndDate        string            `json:"endDate,omitempty"`
	Search         string            `json:"search,omitempty"`
	Page           int               `json:"page,omitempty"`
	Limit          int               `json:"limit,omitempty"`
}

// Values encodes the filters as backend query parameters.
func (f TransactionFilters) Values() url.Values {
	v := url.Values{}
	setIf(v, "status", string(f.Status))
	setIf(v, "organizationId", f.OrganizationID)
	setIf(v, "effectiveDate", f.EffectiveDate)
	setIf(v, "startDate", f.StartDate)
	setIf(v, "endDate", f.EndDate)
	setIf(v, "search", f.Search)
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// Matches reports whether t would be part of a listing filtered by f. Paging is ignored.
func (f TransactionFilters) Matches(t Transaction) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.OrganizationID != "" && t.OrganizationID != f.OrganizationID {
		return false
	}
	return true
}

type TransactionStats struct {
	TotalTransactions int             `json:"totalTransactions"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Pending           int             `json:"pending"`
	Processing        int             `json:"processing"`
	Processed         int             `json:"processed"`
	Failed            int             `json:"failed"`
	Cancelled         int             `json:"cancelled"`
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
