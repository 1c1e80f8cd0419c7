package models

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// AdminUser is the credential record behind the access gate. Rows are created
// by the adminctl tool or the register endpoint; this core only reads them.
type AdminUser struct {
	Username     string `gorm:"column:username"`
	PasswordHash string `gorm:"column:password_hash"` // argon2id hash
	Model
}

func (AdminUser) TableName() string {
	return "admin_users"
}

func (a AdminUser) GetID() int64 {
	return a.ID
}

func AdminByUsername(ctx context.Context, db *gorm.DB, username string) (*AdminUser, error) {
	ctx, span := tracer.Start(ctx, "AdminByUsername", trace.WithAttributes(
		attribute.String("username", username),
	))
	defer span.End()

	var admin AdminUser
	err := db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get admin by username")
		return nil, err
	}

	return &admin, nil
}
