package column

import "fmt"

func formatInt(v int64) string  { return fmt.Sprintf("%d", v) }
func formatUint(v uint64) string { return fmt.Sprintf("%d", v) }
func formatFloat(v float64, sig int) string {
	return fmt.Sprintf("%.*g", sig, v)
}
