package runtime

import (
	"math/big"
)

// Binding pairs a variable name with its value.
type Binding struct {
	Name  string
	Value *big.Int
}

func (b Binding) String() string {
	return FormatBinding(b.Name, b.Value)
}

// FormatBinding renders a binding the way the CLI echoes it. A nil value
// denotes a removed binding.
func FormatBinding(name string, value *big.Int) string {
	if value == nil {
		return name + " unset"
	}
	return name + " = " + value.String()
}

// CloneBigInt copies the provided big.Int pointer, tolerating nil.
func CloneBigInt(src *big.Int) *big.Int {
	if src == nil {
		return nil
	}
	return new(big.Int).Set(src)
}
