package allocation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRequest reads an allocation request from a YAML file.
func LoadRequest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("allocation: read request %s: %w", path, err)
	}
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("allocation: parse request %s: %w", path, err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// LoadFundState reads a fund snapshot from a YAML file.
func LoadFundState(path string) (FundState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FundState{}, fmt.Errorf("allocation: read fund state %s: %w", path, err)
	}
	var fund FundState
	if err := yaml.Unmarshal(data, &fund); err != nil {
		return FundState{}, fmt.Errorf("allocation: parse fund state %s: %w", path, err)
	}
	if fund.TotalAssets <= 0 {
		return FundState{}, fmt.Errorf("allocation: fund state %s has no assets", path)
	}
	return fund, nil
}
