// Package models holds the GORM row types for users, transactions and
// commissions. Domain types in internal/domain stay free of ORM tags; the
// repositories convert with each model's ToDomain and FromDomain.
package models
