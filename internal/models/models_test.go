package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestLineItemsRoundTrip(t *testing.T) {
	items := []LineItem{
		{Name: "maintenance", Amount: decimal.NewFromFloat(42.50)},
		{Name: "heating", Amount: decimal.NewFromFloat(77.10)},
	}

	raw, err := EncodeLineItems(items)
	require.NoError(t, err)

	decoded, err := DecodeLineItems(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	// Order is part of the schema.
	assert.Equal(t, "maintenance", decoded[0].Name)
	assert.True(t, decoded[0].Amount.Equal(decimal.NewFromFloat(42.50)))
	assert.Equal(t, "heating", decoded[1].Name)
}

func TestLineItemsEmptyColumn(t *testing.T) {
	decoded, err := DecodeLineItems(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestLineItemsRejectsUnknownVersion(t *testing.T) {
	raw := datatypes.JSON(`{"version":2,"items":[]}`)
	_, err := DecodeLineItems(raw)
	assert.Error(t, err)
}

func TestLineItemsRejectsGarbage(t *testing.T) {
	_, err := DecodeLineItems(datatypes.JSON(`not json`))
	assert.Error(t, err)
}

func TestBankAssignmentExclusivity(t *testing.T) {
	vendorID := uuid.New()
	residentID := uuid.New()

	vendor := AssignVendor(vendorID)
	require.NotNil(t, vendor.VendorID())
	assert.Equal(t, vendorID, *vendor.VendorID())
	assert.Nil(t, vendor.ResidentID())
	assert.True(t, vendor.IsAssigned())

	resident := AssignResident(residentID)
	assert.Nil(t, resident.VendorID())
	require.NotNil(t, resident.ResidentID())
	assert.Equal(t, residentID, *resident.ResidentID())

	none := Unassigned()
	assert.Nil(t, none.VendorID())
	assert.Nil(t, none.ResidentID())
	assert.False(t, none.IsAssigned())
}

func TestBankAssignmentApply(t *testing.T) {
	now := time.Now()
	entry := &BankStatementEntry{ID: uuid.New(), AssignmentStatus: EntryUnassigned}

	vendorID := uuid.New()
	AssignVendor(vendorID).Apply(entry, now)
	require.NotNil(t, entry.AssignedVendorID)
	assert.Nil(t, entry.AssignedResidentID)
	assert.Equal(t, EntryManuallyMatched, entry.AssignmentStatus)
	require.NotNil(t, entry.AssignedAt)

	residentID := uuid.New()
	AssignResident(residentID).Apply(entry, now)
	assert.Nil(t, entry.AssignedVendorID)
	require.NotNil(t, entry.AssignedResidentID)

	Unassigned().Apply(entry, now)
	assert.Nil(t, entry.AssignedVendorID)
	assert.Nil(t, entry.AssignedResidentID)
	assert.Equal(t, EntryUnassigned, entry.AssignmentStatus)
	assert.Nil(t, entry.AssignedAt)
}
