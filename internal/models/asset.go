package models

import (
	"github.com/shopspring/decimal"
)

// AssetType is the kind of holding an asset represents.
type AssetType string

const (
	AssetTypeGold   AssetType = "gold"
	AssetTypeSilver AssetType = "silver"
	AssetTypeCrypto AssetType = "crypto"
)

// Asset is an asset record as stored by the backend.
type Asset struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Type      AssetType       `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// RecordID returns the asset identifier.
func (a Asset) RecordID() string { return a.ID }

// NewAsset carries the user-editable fields of an asset being created.
type NewAsset struct {
	Name   string          `json:"name"`
	Type   AssetType       `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// AssetUpdate is a partial asset keyed by ID. Nil fields are left untouched.
type AssetUpdate struct {
	ID     string           `json:"id"`
	Name   *string          `json:"name,omitempty"`
	Type   *AssetType       `json:"type,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Note   string           `json:"note,omitempty"`
}

// Details returns the non-amount columns to write, keyed by column name.
func (u AssetUpdate) Details() map[string]any {
	fields := make(map[string]any)
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Type != nil {
		fields["type"] = string(*u.Type)
	}
	return fields
}
