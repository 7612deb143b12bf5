package storage

import (
	"fmt"

	"github.com/vocdoni/zkledger/params"
)

var currentParamsKey = []byte("current")

// SetParameters stores the public parameters of the deployment, replacing
// the previous ones.
func (s *Storage) SetParameters(p *params.Parameters) error {
	data, err := p.Marshal()
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	return s.setArtifact(paramsPrefix, currentParamsKey, data)
}

// Parameters loads the stored public parameters. It returns ErrNotFound if
// none were stored yet.
func (s *Storage) Parameters() (*params.Parameters, error) {
	var data []byte
	if err := s.getArtifact(paramsPrefix, currentParamsKey, &data); err != nil {
		return nil, err
	}
	return params.Unmarshal(data)
}
