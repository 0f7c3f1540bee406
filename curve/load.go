package curve

import (
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

// paramsFile is the on-disk shape of a curve parameter file. LambdaTenor, when set,
// takes precedence over Lambda:
//
//	beta0: 0.05
//	beta1: -0.02
//	beta2: 0.01
//	lambda_tenor: 2Y
type paramsFile struct {
	Params      `yaml:",inline"`
	LambdaTenor string `yaml:"lambda_tenor"`
}

// ParseParams decodes YAML curve parameters and validates them.
func ParseParams(raw []byte) (Params, error) {
	var f paramsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Params{}, errors.Wrap(err, "decode curve params")
	}
	p := f.Params
	if f.LambdaTenor != "" {
		lambda, err := ParseTenor(f.LambdaTenor)
		if err != nil {
			return Params{}, errors.Wrap(err, "lambda_tenor")
		}
		p.Lambda = lambda
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// LoadParams reads curve parameters from a YAML file.
func LoadParams(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, errors.Wrap(err, "read curve params")
	}
	return ParseParams(raw)
}
