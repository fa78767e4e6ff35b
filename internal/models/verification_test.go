package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNewVerificationRecord_CreatorStartsAllPending(t *testing.T) {
	record := NewVerificationRecord(uuid.New(), RoleCreator)

	assert.Equal(t, SubStatusPending, record.EmailStatus)
	assert.Equal(t, SubStatusPending, record.PhoneStatus)
	assert.Equal(t, SubStatusPending, record.PANStatus)
	assert.Equal(t, SubStatusPending, record.IdentityStatus)
	assert.Equal(t, SubStatusPending, record.UPIStatus)
	assert.Equal(t, SubStatusPending, record.CardStatus)
	assert.Equal(t, OverallStatusPending, record.OverallStatus)
}

func TestNewVerificationRecord_BrandGSTStartsNotSubmitted(t *testing.T) {
	record := NewVerificationRecord(uuid.New(), RoleBrand)

	assert.Equal(t, SubStatusNotSubmitted, record.IdentityStatus)
	assert.Equal(t, OverallStatusPending, record.OverallStatus)
}

func TestComputeOverallStatus_Verified(t *testing.T) {
	v := SubStatusVerified

	assert.Equal(t, OverallStatusVerified, ComputeOverallStatus(v, v, v, v, v, SubStatusPending))
	assert.Equal(t, OverallStatusVerified, ComputeOverallStatus(v, v, v, v, SubStatusPending, v))
	// One verified payment method carries even if the other was rejected.
	assert.Equal(t, OverallStatusVerified, ComputeOverallStatus(v, v, v, v, SubStatusRejected, v))
}

func TestComputeOverallStatus_Rejected(t *testing.T) {
	v := SubStatusVerified

	assert.Equal(t, OverallStatusRejected, ComputeOverallStatus(SubStatusRejected, v, v, v, v, v))
	assert.Equal(t, OverallStatusRejected, ComputeOverallStatus(v, v, SubStatusRejected, v, SubStatusPending, SubStatusPending))
	// Both payment methods rejected sinks the aggregate.
	assert.Equal(t, OverallStatusRejected, ComputeOverallStatus(v, v, v, v, SubStatusRejected, SubStatusRejected))
}

func TestComputeOverallStatus_Pending(t *testing.T) {
	v := SubStatusVerified

	// All required verified but no payment method confirmed yet.
	assert.Equal(t, OverallStatusPending, ComputeOverallStatus(v, v, v, v, SubStatusPending, SubStatusPending))
	assert.Equal(t, OverallStatusPending, ComputeOverallStatus(v, SubStatusProcessing, v, v, v, v))
	assert.Equal(t, OverallStatusPending, ComputeOverallStatus(v, v, v, SubStatusNotSubmitted, v, v))
}

func TestComputeOverallStatus_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 2000

	properties := gopter.NewProperties(parameters)

	requiredStatus := gen.OneConstOf(
		SubStatusPending, SubStatusProcessing, SubStatusVerified,
		SubStatusRejected, SubStatusNotSubmitted,
	)
	paymentStatus := gen.OneConstOf(
		SubStatusPending, SubStatusProcessing, SubStatusVerified, SubStatusRejected,
	)

	properties.Property("verified only when all required verified and a payment method verified", prop.ForAll(
		func(email, phone, pan, identity, upi, card string) bool {
			got := ComputeOverallStatus(email, phone, pan, identity, upi, card)

			allVerified := email == SubStatusVerified && phone == SubStatusVerified &&
				pan == SubStatusVerified && identity == SubStatusVerified
			paymentOK := upi == SubStatusVerified || card == SubStatusVerified

			if got == OverallStatusVerified {
				return allVerified && paymentOK
			}
			return !(allVerified && paymentOK)
		},
		requiredStatus, requiredStatus, requiredStatus, requiredStatus,
		paymentStatus, paymentStatus,
	))

	properties.Property("rejected requires a rejected required field or both payments rejected", prop.ForAll(
		func(email, phone, pan, identity, upi, card string) bool {
			got := ComputeOverallStatus(email, phone, pan, identity, upi, card)
			if got != OverallStatusRejected {
				return true
			}

			anyRejected := email == SubStatusRejected || phone == SubStatusRejected ||
				pan == SubStatusRejected || identity == SubStatusRejected
			paymentBad := upi == SubStatusRejected && card == SubStatusRejected
			return anyRejected || paymentBad
		},
		requiredStatus, requiredStatus, requiredStatus, requiredStatus,
		paymentStatus, paymentStatus,
	))

	properties.Property("result is always one of the three aggregate statuses", prop.ForAll(
		func(email, phone, pan, identity, upi, card string) bool {
			got := ComputeOverallStatus(email, phone, pan, identity, upi, card)
			return got == OverallStatusPending || got == OverallStatusVerified || got == OverallStatusRejected
		},
		requiredStatus, requiredStatus, requiredStatus, requiredStatus,
		paymentStatus, paymentStatus,
	))

	properties.TestingRun(t)
}

func TestRecompute_AggregateFollowsSubStatuses(t *testing.T) {
	record := NewVerificationRecord(uuid.New(), RoleCreator)

	record.EmailStatus = SubStatusVerified
	record.PhoneStatus = SubStatusVerified
	record.PANStatus = SubStatusVerified
	record.IdentityStatus = SubStatusVerified
	record.UPIStatus = SubStatusVerified
	record.Recompute()
	assert.Equal(t, OverallStatusVerified, record.OverallStatus)

	record.PANStatus = SubStatusRejected
	record.Recompute()
	assert.Equal(t, OverallStatusRejected, record.OverallStatus)
}

func TestValidSubStatus(t *testing.T) {
	assert.True(t, ValidSubStatus(VerificationFieldEmail, SubStatusPending))
	assert.True(t, ValidSubStatus(VerificationFieldCard, SubStatusProcessing))
	assert.True(t, ValidSubStatus(VerificationFieldGST, SubStatusNotSubmitted))

	assert.False(t, ValidSubStatus(VerificationFieldEmail, SubStatusNotSubmitted))
	assert.False(t, ValidSubStatus(VerificationFieldIdentity, SubStatusNotSubmitted))
	assert.False(t, ValidSubStatus(VerificationFieldEmail, "unknown"))
}

func TestCardBrandFromNumber(t *testing.T) {
	assert.Equal(t, CardBrandVisa, CardBrandFromNumber("4111111111111111"))
	assert.Equal(t, CardBrandMastercard, CardBrandFromNumber("5500000000000004"))
	assert.Equal(t, CardBrandAmex, CardBrandFromNumber("378282246310005"))
	assert.Equal(t, CardBrandUnknown, CardBrandFromNumber("6011000000000004"))
	assert.Equal(t, CardBrandUnknown, CardBrandFromNumber(""))
}

func TestCardLast4FromNumber(t *testing.T) {
	assert.Equal(t, "1111", CardLast4FromNumber("4111111111111111"))
	assert.Equal(t, "0004", CardLast4FromNumber("5500 0000 0000 0004"))
	assert.Equal(t, "12", CardLast4FromNumber("12"))
}
