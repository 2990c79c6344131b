package groupby

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"board/column"
)

// foldKey takes one group's representative key value (its first row, since
// every row in a group shares the same key by construction) for each group.
func foldKey(col *column.Column, groups []Group) (*column.Buffer, *column.Dictionary, error) {
	n := len(groups)
	out := column.New(col.Name(), col.Type(), n)
	if col.Dictionary() != nil {
		out.SetDictionary(col.Dictionary())
	}
	for i, g := range groups {
		if len(g.Rows) == 0 {
			continue
		}
		copyKeyValue(out, i, col, int(g.Rows[0]))
	}
	return out.Buffer(), out.Dictionary(), nil
}

func copyKeyValue(dst *column.Column, dstRow int, src *column.Column, srcRow int) {
	if !src.IsValid(srcRow) {
		dst.SetValid(dstRow, false)
		return
	}
	dst.SetValid(dstRow, true)
	switch src.Type() {
	case column.Int8:
		dst.Buffer().MutInt8()[dstRow] = src.Buffer().Int8()[srcRow]
	case column.Int16:
		dst.Buffer().MutInt16()[dstRow] = src.Buffer().Int16()[srcRow]
	case column.Int32:
		dst.Buffer().MutInt32()[dstRow] = src.Buffer().Int32()[srcRow]
	case column.Int64:
		dst.Buffer().MutInt64()[dstRow] = src.Buffer().Int64()[srcRow]
	case column.Uint8:
		dst.Buffer().MutUint8()[dstRow] = src.Buffer().Uint8()[srcRow]
	case column.Uint16:
		dst.Buffer().MutUint16()[dstRow] = src.Buffer().Uint16()[srcRow]
	case column.Uint32, column.Category:
		dst.Buffer().MutUint32()[dstRow] = src.Buffer().Uint32()[srcRow]
	case column.Uint64:
		dst.Buffer().MutUint64()[dstRow] = src.Buffer().Uint64()[srcRow]
	case column.Float32:
		dst.Buffer().MutFloat32()[dstRow] = src.Buffer().Float32()[srcRow]
	case column.Float64:
		dst.Buffer().MutFloat64()[dstRow] = src.Buffer().Float64()[srcRow]
	case column.Text:
		dst.Buffer().MutStrings()[dstRow] = src.Buffer().Strings()[srcRow]
	case column.Oid:
		dst.Buffer().MutOids()[dstRow] = src.Buffer().Oids()[srcRow]
	}
}

// foldAggregate computes one aggregate term over every group's rows,
// returning the result buffer and the output column's type (spec.md §4.5
// step 3).
func foldAggregate(agg Agg, valueCol *column.Column, groups []Group, nGroups int) (*column.Buffer, column.DataType, error) {
	switch agg {
	case AggCountStar:
		buf := column.NewBuffer(column.Uint64, nGroups)
		out := buf.MutUint64()
		for i, g := range groups {
			out[i] = uint64(len(g.Rows))
		}
		return buf, column.Uint64, nil

	case AggCount:
		if valueCol == nil {
			return nil, 0, fmt.Errorf("CNT(x) requires an argument")
		}
		buf := column.NewBuffer(column.Uint64, nGroups)
		out := buf.MutUint64()
		for i, g := range groups {
			n := uint64(0)
			for _, r := range g.Rows {
				if valueCol.IsValid(int(r)) {
					n++
				}
			}
			out[i] = n
		}
		return buf, column.Uint64, nil

	case AggSum, AggAvg, AggVar, AggStdev, AggMedian:
		if valueCol == nil {
			return nil, 0, fmt.Errorf("%v requires an argument", agg)
		}
		vals, code := valueCol.SelectFloat64(column.FullMask(valueCol.Len()))
		if code != 0 {
			return nil, 0, fmt.Errorf("column cannot widen to double")
		}
		buf := column.NewBuffer(column.Float64, nGroups)
		out := buf.MutFloat64()
		for i, g := range groups {
			out[i] = foldNumeric(agg, vals, g.Rows, valueCol)
		}
		return buf, column.Float64, nil

	case AggMin, AggMax:
		if valueCol == nil {
			return nil, 0, fmt.Errorf("%v requires an argument", agg)
		}
		typ := valueCol.Type()
		if typ == column.Text || typ == column.Category {
			buf := column.NewBuffer(column.Text, nGroups)
			out := buf.MutStrings()
			for i, g := range groups {
				out[i] = foldMinMaxString(agg, valueCol, g.Rows)
			}
			return buf, column.Text, nil
		}
		vals, code := valueCol.SelectFloat64(column.FullMask(valueCol.Len()))
		if code != 0 {
			return nil, 0, fmt.Errorf("column cannot widen to double")
		}
		buf := column.NewBuffer(typ, nGroups)
		for i, g := range groups {
			v := foldMinMaxFloat(agg, vals, g.Rows)
			setNumeric(buf, i, typ, v)
		}
		return buf, typ, nil

	case AggDistinct:
		if valueCol == nil {
			return nil, 0, fmt.Errorf("DISTINCT requires an argument")
		}
		buf := column.NewBuffer(column.Text, nGroups)
		out := buf.MutStrings()
		for i, g := range groups {
			out[i] = foldDistinct(valueCol, g.Rows)
		}
		return buf, column.Text, nil

	case AggConcat:
		if valueCol == nil {
			return nil, 0, fmt.Errorf("CONCAT requires an argument")
		}
		buf := column.NewBuffer(column.Text, nGroups)
		out := buf.MutStrings()
		for i, g := range groups {
			parts := make([]string, len(g.Rows))
			for j, r := range g.Rows {
				parts[j] = valueCol.FormatValueRaw(int(r))
			}
			out[i] = strings.Join(parts, ",")
		}
		return buf, column.Text, nil

	default:
		return nil, 0, fmt.Errorf("unknown aggregator %v", agg)
	}
}

func foldNumeric(agg Agg, vals []float64, rows []uint32, valueCol *column.Column) float64 {
	var sum float64
	var n int
	samples := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !valueCol.IsValid(int(r)) {
			continue
		}
		v := vals[r]
		sum += v
		samples = append(samples, v)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	mean := sum / float64(n)
	switch agg {
	case AggSum:
		return sum
	case AggAvg:
		return mean
	case AggVar, AggStdev:
		var acc float64
		for _, v := range samples {
			d := v - mean
			acc += d * d
		}
		variance := acc / float64(n)
		if agg == AggVar {
			return variance
		}
		return math.Sqrt(variance)
	case AggMedian:
		sort.Float64s(samples)
		mid := len(samples) / 2
		if len(samples)%2 == 1 {
			return samples[mid]
		}
		return (samples[mid-1] + samples[mid]) / 2
	default:
		return math.NaN()
	}
}

func foldMinMaxFloat(agg Agg, vals []float64, rows []uint32) float64 {
	best := math.NaN()
	for _, r := range rows {
		v := vals[r]
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(best) {
			best = v
			continue
		}
		if (agg == AggMin && v < best) || (agg == AggMax && v > best) {
			best = v
		}
	}
	return best
}

func foldMinMaxString(agg Agg, col *column.Column, rows []uint32) string {
	var best string
	set := false
	for _, r := range rows {
		if !col.IsValid(int(r)) {
			continue
		}
		v := col.FormatValueRaw(int(r))
		if !set {
			best, set = v, true
			continue
		}
		if (agg == AggMin && v < best) || (agg == AggMax && v > best) {
			best = v
		}
	}
	return best
}

func foldDistinct(col *column.Column, rows []uint32) string {
	seen := make(map[string]struct{})
	var order []string
	for _, r := range rows {
		if !col.IsValid(int(r)) {
			continue
		}
		v := col.FormatValueRaw(int(r))
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			order = append(order, v)
		}
	}
	return strings.Join(order, ",")
}

func setNumeric(buf *column.Buffer, i int, typ column.DataType, v float64) {
	switch typ {
	case column.Int8:
		buf.MutInt8()[i] = int8(v)
	case column.Int16:
		buf.MutInt16()[i] = int16(v)
	case column.Int32:
		buf.MutInt32()[i] = int32(v)
	case column.Int64:
		buf.MutInt64()[i] = int64(v)
	case column.Uint8:
		buf.MutUint8()[i] = uint8(v)
	case column.Uint16:
		buf.MutUint16()[i] = uint16(v)
	case column.Uint32:
		buf.MutUint32()[i] = uint32(v)
	case column.Uint64:
		buf.MutUint64()[i] = uint64(v)
	case column.Float32:
		buf.MutFloat32()[i] = float32(v)
	case column.Float64:
		buf.MutFloat64()[i] = v
	}
}
