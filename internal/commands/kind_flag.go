package commands

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

const kindAll = "all"

// kindValue is a --kind flag accepting a fault kind (long or short name) or
// "all".
type kindValue struct {
	raw   string
	kinds []faultlog.Kind
}

var _ pflag.Value = (*kindValue)(nil)

func newKindValue() *kindValue {
	return &kindValue{raw: kindAll, kinds: append([]faultlog.Kind(nil), faultlog.Kinds...)}
}

func (v *kindValue) String() string { return v.raw }

func (v *kindValue) Set(s string) error {
	if strings.EqualFold(strings.TrimSpace(s), kindAll) {
		v.raw = kindAll
		v.kinds = append([]faultlog.Kind(nil), faultlog.Kinds...)
		return nil
	}
	k, err := faultlog.ParseKind(s)
	if err != nil {
		return err
	}
	v.raw = string(k)
	v.kinds = []faultlog.Kind{k}
	return nil
}

func (v *kindValue) Type() string { return "kind" }

func (v *kindValue) Kinds() []faultlog.Kind { return v.kinds }

func (v *kindValue) Has(k faultlog.Kind) bool {
	for _, want := range v.kinds {
		if want == k {
			return true
		}
	}
	return false
}
