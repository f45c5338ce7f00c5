package models

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type NachaFileStatus string

const (
	NachaGenerated   NachaFileStatus = "generated"
	NachaValidated   NachaFileStatus = "validated"
	NachaTransmitted NachaFileStatus = "transmitted"
	NachaFailed      NachaFileStatus = "failed"
)

// NachaFile describes a generated NACHA batch file.
type NachaFile struct {
	ID               string          `json:"id"`
	Filename         string          `json:"filename"`
	FileType         string          `json:"fileType,omitempty"`
	EffectiveDate    string          `json:"effectiveDate"`
	Status           NachaFileStatus `json:"status"`
	TransactionCount int             `json:"transactionCount"`
	TotalDebit       decimal.Decimal `json:"totalDebit"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
	CreatedAt        time.Time       `json:"createdAt"`
	TransmittedAt    *time.Time      `json:"transmittedAt,omitempty"`
}

type GenerateNachaRequest struct {
	EffectiveDate  string `json:"effectiveDate"`
	FileType       string `json:"fileType,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
}

type NachaValidation struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type NachaStats struct {
	TotalFiles          int `json:"totalFiles"`
	PendingTransmission int `json:"pendingTransmission"`
	Transmitted         int `json:"transmitted"`
	Failed              int `json:"failed"`
}

type NachaFilters struct {
	Status        NachaFileStatus `json:"status,omitempty"`
	EffectiveDate string          `json:"effectiveDate,omitempty"`
	Page          int             `json:"page,omitempty"`
	Limit         int             `json:"limit,omitempty"`
}

func (f NachaFilters) Values() url.Values {
	v := url.Values{}
	setIf(v, "status", string(f.Status))
	setIf(v, "effectiveDate", f.EffectiveDate)
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}
