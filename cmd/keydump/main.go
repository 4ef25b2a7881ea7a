// keydump compiles a WHERE expression against a sort key and dumps the
// resulting RPN program, then optionally evaluates it over probe key ranges.
//
// Example:
//
//	keydump -key "date:Date,id:Int64" \
//	        -where "toYYYYMM(date) = 202001 AND id > 5" \
//	        -probes "2020-01-01,0..2020-01-31,100;2020-02-01,0..2020-02-29,100"
//
// Each probe is leftKey..rightKey with comma-separated per-column values;
// omitting ..rightKey checks the semi-infinite tail [leftKey, +inf).
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/harshithgowdakt/keyprune/internal/keycond"
	"github.com/harshithgowdakt/keyprune/internal/parser"
	"github.com/harshithgowdakt/keyprune/internal/types"
)

func main() {
	keySpec := flag.String("key", "", "sort key as name:type pairs, e.g. \"date:Date,id:Int64\"")
	where := flag.String("where", "", "WHERE expression to compile")
	probes := flag.String("probes", "", "semicolon-separated probe ranges, each \"leftKey..rightKey\"")
	flag.Parse()

	if *keySpec == "" {
		fatalf("missing required -key")
	}

	keyCols, keyTypes, err := parseKeySpec(*keySpec)
	if err != nil {
		fatalf("bad -key: %v", err)
	}

	var expr parser.Expression
	if *where != "" {
		expr, err = parser.ParseExpression(*where)
		if err != nil {
			fatalf("bad -where: %v", err)
		}
	}

	cond := keycond.NewKeyCondition(expr, keyCols, keyTypes, keycond.FoldConstants(expr), nil)

	fmt.Println("rpn:")
	fmt.Println(cond)
	fmt.Printf("always_unknown_or_true: %v\n", cond.AlwaysUnknownOrTrue())
	fmt.Printf("max_key_column: %d\n", cond.MaxKeyColumn())

	if *probes == "" {
		return
	}
	for _, probe := range strings.Split(*probes, ";") {
		probe = strings.TrimSpace(probe)
		if probe == "" {
			continue
		}
		if err := evalProbe(cond, keyTypes, probe); err != nil {
			fatalf("bad probe %q: %v", probe, err)
		}
	}
}

func parseKeySpec(spec string) ([]string, []types.DataType, error) {
	var cols []string
	var dts []types.DataType
	for _, item := range strings.Split(spec, ",") {
		name, typeName, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok {
			return nil, nil, fmt.Errorf("expected name:type, got %q", item)
		}
		dt, err := types.ParseDataType(typeName)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, name)
		dts = append(dts, dt)
	}
	return cols, dts, nil
}

func parseKeyValues(keyTypes []types.DataType, s string) ([]types.Value, error) {
	fields := strings.Split(s, ",")
	if len(fields) > len(keyTypes) {
		return nil, fmt.Errorf("%d values for %d key columns", len(fields), len(keyTypes))
	}
	vals := make([]types.Value, len(fields))
	for i, f := range fields {
		v, err := parseValue(keyTypes[i], strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// parseValue interprets a command line literal as a value of dt: integers and
// floats directly, anything else as a string literal (dates included).
func parseValue(dt types.DataType, s string) (types.Value, error) {
	var raw types.Value
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		raw = n
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		raw = f
	} else {
		raw = s
	}
	v, ok := types.CoerceValue(dt, raw)
	if !ok {
		return nil, fmt.Errorf("%q is not a %s value", s, dt.Name())
	}
	return v, nil
}

func evalProbe(cond *keycond.KeyCondition, keyTypes []types.DataType, probe string) error {
	left, right, bounded := strings.Cut(probe, "..")

	leftKey, err := parseKeyValues(keyTypes, left)
	if err != nil {
		return err
	}

	if !bounded {
		used := len(leftKey)
		may := cond.MayBeTrueAfter(used, leftKey, keyTypes[:used])
		fmt.Printf("probe [%s, +inf): may_be_true=%v\n", left, may)
		return nil
	}

	rightKey, err := parseKeyValues(keyTypes, right)
	if err != nil {
		return err
	}
	if len(rightKey) != len(leftKey) {
		return fmt.Errorf("left key has %d values, right key %d", len(leftKey), len(rightKey))
	}

	used := len(leftKey)
	may := cond.MayBeTrueInRange(used, leftKey, rightKey, keyTypes[:used])
	fmt.Printf("probe [%s, %s]: may_be_true=%v\n", left, right, may)
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "keydump: "+format+"\n", args...)
	os.Exit(1)
}
