package onchain

// abi.go — ABI del contrato de patrocinios y (de)codificación de calldata.
//
// Escrituras: createSponsorshipDeal, submitBid, acceptDeal, reportPerformance.
// Lectura (view): getDealInfo.
// Los valores "cifrados" viajan como `bytes`; también amount/duration en
// createSponsorshipDeal, para que el mismo ciphertext sirva en todas las llamadas.

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/alejandrodnm/lockload/internal/domain"
)

var sponsorshipABI abi.ABI

func init() {
	var err error

	sponsorshipABI, err = abi.JSON(strings.NewReader(`[
		{
			"name": "createSponsorshipDeal",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "_title", "type": "string"},
				{"name": "_description", "type": "string"},
				{"name": "_amount", "type": "bytes"},
				{"name": "_duration", "type": "bytes"},
				{"name": "_streamer", "type": "address"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "submitBid",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "dealId", "type": "uint256"},
				{"name": "bidAmount", "type": "bytes"},
				{"name": "performanceCommitment", "type": "bytes"},
				{"name": "inputProof", "type": "bytes"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "acceptDeal",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "dealId", "type": "uint256"},
				{"name": "viewerCount", "type": "bytes"},
				{"name": "engagementRate", "type": "bytes"},
				{"name": "inputProof", "type": "bytes"}
			],
			"outputs": []
		},
		{
			"name": "reportPerformance",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "dealId", "type": "uint256"},
				{"name": "totalViews", "type": "bytes"},
				{"name": "totalEngagement", "type": "bytes"},
				{"name": "conversionRate", "type": "bytes"},
				{"name": "revenue", "type": "bytes"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "getDealInfo",
			"type": "function",
			"stateMutability": "view",
			"inputs": [{"name": "dealId", "type": "uint256"}],
			"outputs": [
				{"name": "title", "type": "string"},
				{"name": "description", "type": "string"},
				{"name": "amount", "type": "uint8"},
				{"name": "duration", "type": "uint8"},
				{"name": "viewerCount", "type": "uint8"},
				{"name": "engagementRate", "type": "uint8"},
				{"name": "isActive", "type": "bool"},
				{"name": "isVerified", "type": "bool"},
				{"name": "sponsor", "type": "address"},
				{"name": "streamer", "type": "address"},
				{"name": "startTime", "type": "uint256"},
				{"name": "endTime", "type": "uint256"}
			]
		}
	]`))
	if err != nil {
		panic("sponsorship abi parse: " + err.Error())
	}
}

// PackCreateDeal codifica createSponsorshipDeal. El streamer no se valida:
// una address mal formada se codifica como lo haría common.HexToAddress.
func PackCreateDeal(call domain.CreateDealCall) ([]byte, error) {
	data, err := sponsorshipABI.Pack(string(domain.OpCreateDeal),
		call.Title,
		call.Description,
		nonNilBytes(call.Amount),
		nonNilBytes(call.Duration),
		common.HexToAddress(call.Streamer),
	)
	if err != nil {
		return nil, fmt.Errorf("onchain.PackCreateDeal: %w", err)
	}
	return data, nil
}

// PackSubmitBid codifica submitBid.
func PackSubmitBid(call domain.SubmitBidCall) ([]byte, error) {
	data, err := sponsorshipABI.Pack(string(domain.OpSubmitBid),
		big.NewInt(call.DealID),
		nonNilBytes(call.Amount),
		nonNilBytes(call.Performance),
		nonNilBytes(call.Proof),
	)
	if err != nil {
		return nil, fmt.Errorf("onchain.PackSubmitBid: %w", err)
	}
	return data, nil
}

// PackAcceptDeal codifica acceptDeal.
func PackAcceptDeal(call domain.AcceptDealCall) ([]byte, error) {
	data, err := sponsorshipABI.Pack(string(domain.OpAcceptDeal),
		big.NewInt(call.DealID),
		nonNilBytes(call.ViewerCount),
		nonNilBytes(call.EngagementRate),
		nonNilBytes(call.Proof),
	)
	if err != nil {
		return nil, fmt.Errorf("onchain.PackAcceptDeal: %w", err)
	}
	return data, nil
}

// PackReportPerformance codifica reportPerformance.
func PackReportPerformance(call domain.ReportPerformanceCall) ([]byte, error) {
	data, err := sponsorshipABI.Pack(string(domain.OpReportPerformance),
		big.NewInt(call.DealID),
		nonNilBytes(call.TotalViews),
		nonNilBytes(call.TotalEngagement),
		nonNilBytes(call.ConversionRate),
		nonNilBytes(call.Revenue),
	)
	if err != nil {
		return nil, fmt.Errorf("onchain.PackReportPerformance: %w", err)
	}
	return data, nil
}

// PackGetDealInfo codifica la lectura getDealInfo.
func PackGetDealInfo(dealID int64) ([]byte, error) {
	data, err := sponsorshipABI.Pack(string(domain.OpGetDealInfo), big.NewInt(dealID))
	if err != nil {
		return nil, fmt.Errorf("onchain.PackGetDealInfo: %w", err)
	}
	return data, nil
}

// dealInfoOutput refleja las salidas de getDealInfo para abi.UnpackIntoInterface.
type dealInfoOutput struct {
	Title          string
	Description    string
	Amount         uint8
	Duration       uint8
	ViewerCount    uint8
	EngagementRate uint8
	IsActive       bool
	IsVerified     bool
	Sponsor        common.Address
	Streamer       common.Address
	StartTime      *big.Int
	EndTime        *big.Int
}

// DecodeDealInfo decodifica la respuesta de getDealInfo.
func DecodeDealInfo(dealID int64, output []byte) (domain.ChainDealInfo, error) {
	var out dealInfoOutput
	if err := sponsorshipABI.UnpackIntoInterface(&out, string(domain.OpGetDealInfo), output); err != nil {
		return domain.ChainDealInfo{}, fmt.Errorf("onchain.DecodeDealInfo: %w", err)
	}
	return domain.ChainDealInfo{
		DealID:         dealID,
		Title:          out.Title,
		Description:    out.Description,
		Amount:         out.Amount,
		Duration:       out.Duration,
		ViewerCount:    out.ViewerCount,
		EngagementRate: out.EngagementRate,
		IsActive:       out.IsActive,
		IsVerified:     out.IsVerified,
		Sponsor:        out.Sponsor.Hex(),
		Streamer:       out.Streamer.Hex(),
		StartTime:      unixTime(out.StartTime),
		EndTime:        unixTime(out.EndTime),
	}, nil
}

// encodeDealInfo es la inversa de DecodeDealInfo; la usa DryRunContract para
// responder getDealInfo con los mismos bytes que devolvería un nodo.
func encodeDealInfo(info domain.ChainDealInfo) ([]byte, error) {
	method := sponsorshipABI.Methods[string(domain.OpGetDealInfo)]
	return method.Outputs.Pack(
		info.Title,
		info.Description,
		info.Amount,
		info.Duration,
		info.ViewerCount,
		info.EngagementRate,
		info.IsActive,
		info.IsVerified,
		common.HexToAddress(info.Sponsor),
		common.HexToAddress(info.Streamer),
		unixBig(info.StartTime),
		unixBig(info.EndTime),
	)
}

func unixTime(v *big.Int) time.Time {
	if v == nil || v.Sign() == 0 {
		return time.Time{}
	}
	return time.Unix(v.Int64(), 0).UTC()
}

func unixBig(t time.Time) *big.Int {
	if t.IsZero() {
		return big.NewInt(0)
	}
	return big.NewInt(t.Unix())
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
