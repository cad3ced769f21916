package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBid() BidRequest {
	return BidRequest{
		DealID:                1,
		Bidder:                "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6",
		Amount:                "1.25",
		PerformanceCommitment: "50k",
		Duration:              "30",
		Platform:              "twitch",
		Content:               "Daily streams with overlay placement",
	}
}

func TestBidRequest_ValidPasses(t *testing.T) {
	assert.NoError(t, validBid().Validate())
}

func TestBidRequest_ZeroAmountRejected(t *testing.T) {
	req := validBid()
	req.Amount = "0"

	err := req.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Please enter a valid bid amount", verr.Fields["amount"])
	assert.Len(t, verr.Fields, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBidRequest_EmptyFormReportsEveryField(t *testing.T) {
	err := BidRequest{}.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 5)
	assert.Equal(t, "Please specify your performance commitment", verr.Fields["performanceCommitment"])
	assert.Equal(t, "Please select campaign duration", verr.Fields["duration"])
	assert.Equal(t, "Please select your primary platform", verr.Fields["platform"])
	assert.Equal(t, "Please describe your content strategy", verr.Fields["content"])
	assert.NotContains(t, verr.Fields, "additionalInfo")
}

func TestBidRequest_NonNumericAmountRejected(t *testing.T) {
	req := validBid()
	req.Amount = "lots"
	assert.ErrorIs(t, req.Validate(), ErrValidation)

	req.Amount = "-3"
	assert.ErrorIs(t, req.Validate(), ErrValidation)
}

func TestCreateDealRequest_RequiresAllFields(t *testing.T) {
	req := CreateDealRequest{Title: "CS2 Major", Description: "d", Amount: "1", Duration: "30"}

	err := req.Validate()
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Equal(t, "Please fill in all fields", UserMessage(err))
}

func TestCreateDealRequest_AddressNotValidated(t *testing.T) {
	req := CreateDealRequest{
		Title: "CS2 Major", Description: "d", Amount: "0.1", Duration: "30",
		StreamerAddress: "not-an-address",
	}
	assert.NoError(t, req.Validate())
}

func TestCreateDealRequest_EndDateBeforeStart(t *testing.T) {
	start := testNow.Add(7 * 24 * time.Hour)
	req := CreateDealRequest{
		Title: "CS2 Major", Description: "d", Amount: "0.1", Duration: "30",
		StreamerAddress: "0xdef", StartDate: &start,
	}

	for _, end := range []time.Time{start.Add(-24 * time.Hour), start} {
		req.EndDate = &end
		err := req.Validate()
		require.ErrorIs(t, err, ErrValidation)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "End date must be after start date", verr.Fields["endDate"])
	}

	end := start.Add(24 * time.Hour)
	req.EndDate = &end
	assert.NoError(t, req.Validate())
}

func TestCreateDealRequest_ToDeal(t *testing.T) {
	reveal := false
	req := CreateDealRequest{
		Creator: "0xabc", Title: "CS2 Major", Description: "d", Amount: "0.1", Duration: "14",
		StreamerAddress: "0xdef", Game: "cs2", Category: "fps", AutoReveal: &reveal,
	}

	d := req.ToDeal(testNow)

	assert.Equal(t, DealEncrypted, d.Status)
	assert.Equal(t, "Counter-Strike 2", d.Game)
	assert.Equal(t, "FPS", d.Category)
	assert.Equal(t, "0xdef", d.Team)
	assert.Equal(t, 14, d.DurationDays)
	assert.Equal(t, testNow.Add(14*24*time.Hour), d.EndTime)
	assert.False(t, d.AutoReveal)
	assert.Equal(t, "0.1", d.Value.String())
}

func TestPerformanceReport_Validate(t *testing.T) {
	err := PerformanceReport{TotalViews: "10000"}.Validate()
	assert.Equal(t, "Please fill in all performance data", UserMessage(err))

	assert.NoError(t, PerformanceReport{TotalViews: "10000", TotalEngagement: "8500"}.Validate())
}

func TestUserMessage_DistinctPerCause(t *testing.T) {
	cause := errors.New("user rejected the request")

	msgs := []string{
		UserMessage(ErrWalletNotConnected),
		UserMessage(EncodingError(OpSubmitBid, cause)),
		UserMessage(TransactionError(OpSubmitBid, cause)),
	}

	assert.Equal(t, "Please connect your wallet first", msgs[0])
	assert.Equal(t, "Error encrypting bid data", msgs[1])
	assert.Equal(t, "Failed to submit bid: user rejected the request", msgs[2])

	lifecycle := map[string]bool{
		UserMessage(ErrDealExpired):      true,
		UserMessage(ErrDealNotOpen):      true,
		UserMessage(ErrDealNotActive):    true,
		UserMessage(ErrApprovalRequired): true,
	}
	assert.Len(t, lifecycle, 4)
	assert.ErrorIs(t, TransactionError(OpSubmitBid, cause), ErrTransactionFailed)
	assert.ErrorIs(t, TransactionError(OpSubmitBid, cause), cause)
}
