package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/repository/common"
)

var ErrVerificationNotFound = errors.New("verification record not found")

// VerificationRepository owns the verification_records table. Every write
// persists the full sub-state together with the recomputed aggregate.
type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRecord, error) {
	return common.GetByID[models.VerificationRecord](ctx, r.db, "verification_records", id, ErrVerificationNotFound)
}

// GetByUser returns the record for a (user, role) pair. Strict read: callers
// that want upsert semantics go through Create.
func (r *VerificationRepository) GetByUser(ctx context.Context, userID uuid.UUID, role string) (*models.VerificationRecord, error) {
	var record models.VerificationRecord
	query := `SELECT * FROM verification_records WHERE user_id = $1 AND role = $2`
	if err := r.db.GetContext(ctx, &record, query, userID, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("verification repository: get by user %w", err)
	}
	return &record, nil
}

func (r *VerificationRepository) Create(ctx context.Context, record *models.VerificationRecord) error {
	query := `
		INSERT INTO verification_records (
			user_id, role,
			email_status, phone_status, pan_status, identity_status,
			upi_status, card_status, overall_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, role) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		record.UserID, record.Role,
		record.EmailStatus, record.PhoneStatus, record.PANStatus, record.IdentityStatus,
		record.UPIStatus, record.CardStatus, record.OverallStatus,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the upsert race: another request created it first.
		existing, getErr := r.GetByUser(ctx, record.UserID, record.Role)
		if getErr != nil {
			return getErr
		}
		*record = *existing
		return nil
	}
	if err != nil {
		return fmt.Errorf("verification repository: create %w", err)
	}
	return nil
}

// Update writes the whole record back. The caller is responsible for having
// run Recompute first; the aggregate column is never written on its own.
func (r *VerificationRepository) Update(ctx context.Context, record *models.VerificationRecord) error {
	query := `
		UPDATE verification_records SET
			email_status = $1, email = $2, email_code = $3, email_code_issued_at = $4,
			email_verified_at = $5, email_reject_reason = $6,
			phone_status = $7, phone = $8, phone_code = $9, phone_code_issued_at = $10,
			phone_verified_at = $11, phone_reject_reason = $12,
			pan_status = $13, pan_number = $14, pan_document_url = $15, pan_verified_at = $16,
			identity_status = $17, identity_number = $18, identity_document_url = $19, identity_verified_at = $20,
			upi_status = $21, upi_handle = $22, upi_verified_at = $23,
			card_status = $24, card_last4 = $25, card_brand = $26, card_verified_at = $27,
			overall_status = $28, reviewed_by = $29, reviewed_at = $30,
			updated_at = NOW()
		WHERE id = $31
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		record.EmailStatus, record.Email, record.EmailCode, record.EmailCodeIssuedAt,
		record.EmailVerifiedAt, record.EmailRejectReason,
		record.PhoneStatus, record.Phone, record.PhoneCode, record.PhoneCodeIssuedAt,
		record.PhoneVerifiedAt, record.PhoneRejectReason,
		record.PANStatus, record.PANNumber, record.PANDocumentURL, record.PANVerifiedAt,
		record.IdentityStatus, record.IdentityNumber, record.IdentityDocumentURL, record.IdentityVerifiedAt,
		record.UPIStatus, record.UPIHandle, record.UPIVerifiedAt,
		record.CardStatus, record.CardLast4, record.CardBrand, record.CardVerifiedAt,
		record.OverallStatus, record.ReviewedBy, record.ReviewedAt,
		record.ID,
	).Scan(&record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVerificationNotFound
	}
	if err != nil {
		return fmt.Errorf("verification repository: update %w", err)
	}
	return nil
}

// ListByOverallStatus pages through records for the admin review queue.
func (r *VerificationRepository) ListByOverallStatus(ctx context.Context, overallStatus string, limit, offset int) ([]models.VerificationRecord, error) {
	var records []models.VerificationRecord
	query := `
		SELECT * FROM verification_records
		WHERE overall_status = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &records, query, overallStatus, limit, offset); err != nil {
		return nil, fmt.Errorf("verification repository: list by overall status %w", err)
	}
	return records, nil
}

func (r *VerificationRepository) CountByOverallStatus(ctx context.Context, overallStatus string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM verification_records WHERE overall_status = $1`, overallStatus); err != nil {
		return 0, fmt.Errorf("verification repository: count by overall status %w", err)
	}
	return count, nil
}
