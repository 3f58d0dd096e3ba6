package oracle // import "github.com/joincivil/civil-content-gate/pkg/oracle"

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// HybridCampaignABI is the subset of the hybrid crowdfunding/subscription
// contract ABI the gate reads from.
const HybridCampaignABI = `[
  {"type":"function","name":"getCampaign","stateMutability":"view",
   "inputs":[{"name":"campaignId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"title","type":"string"},
     {"name":"owner","type":"address"},
     {"name":"goalWei","type":"uint256"},
     {"name":"deadline","type":"uint256"},
     {"name":"collectedWei","type":"uint256"},
     {"name":"finalized","type":"bool"}]}]},
  {"type":"function","name":"isActive","stateMutability":"view",
   "inputs":[{"name":"campaignId","type":"uint256"},{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"activeUntil","stateMutability":"view",
   "inputs":[{"name":"campaignId","type":"uint256"},{"name":"user","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

const (
	methodGetCampaign = "getCampaign"
	methodIsActive    = "isActive"
	methodActiveUntil = "activeUntil"
)

// HybridCampaign is the tuple returned by getCampaign
type HybridCampaign struct {
	Title        string
	Owner        common.Address
	GoalWei      *big.Int
	Deadline     *big.Int
	CollectedWei *big.Int
	Finalized    bool
}

// HybridCaller is a read-only binding to the hybrid campaign contract
type HybridCaller struct {
	contract *bind.BoundContract
}

// NewHybridCaller creates a new read-only instance of the contract bound to address
func NewHybridCaller(address common.Address, caller bind.ContractCaller) (*HybridCaller, error) {
	parsed, err := abi.JSON(strings.NewReader(HybridCampaignABI))
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(address, parsed, caller, nil, nil)
	return &HybridCaller{contract: contract}, nil
}

// GetCampaign is a free data retrieval call binding the contract method getCampaign
func (h *HybridCaller) GetCampaign(opts *bind.CallOpts, campaignID *big.Int) (HybridCampaign, error) {
	var out []interface{}
	err := h.contract.Call(opts, &out, methodGetCampaign, campaignID)
	if err != nil {
		return HybridCampaign{}, err
	}
	out0 := *abi.ConvertType(out[0], new(HybridCampaign)).(*HybridCampaign)
	return out0, nil
}

// IsActive is a free data retrieval call binding the contract method isActive
func (h *HybridCaller) IsActive(opts *bind.CallOpts, campaignID *big.Int, user common.Address) (bool, error) {
	var out []interface{}
	err := h.contract.Call(opts, &out, methodIsActive, campaignID, user)
	if err != nil {
		return false, err
	}
	out0 := *abi.ConvertType(out[0], new(bool)).(*bool)
	return out0, nil
}

// ActiveUntil is a free data retrieval call binding the contract method activeUntil
func (h *HybridCaller) ActiveUntil(opts *bind.CallOpts, campaignID *big.Int, user common.Address) (*big.Int, error) {
	var out []interface{}
	err := h.contract.Call(opts, &out, methodActiveUntil, campaignID, user)
	if err != nil {
		return nil, err
	}
	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, nil
}
