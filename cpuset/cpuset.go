// Package cpuset parses CPU-range strings such as "0-3,5,7" into a Set of
// CPU ids, used to pin a concurrent dispatch queue's worker threads to an
// explicit affinity mask.
package cpuset

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/zalgonoise/parse"
)

// Set is an ordered, deduplicated collection of CPU ids.
type Set struct {
	cpus []int
}

// CPUs returns the set's members in ascending order. The returned slice must
// not be mutated by the caller.
func (s Set) CPUs() []int {
	return s.cpus
}

// Len returns the number of CPUs in the set.
func (s Set) Len() int {
	return len(s.cpus)
}

// Contains reports whether cpu is a member of the set.
func (s Set) Contains(cpu int) bool {
	_, ok := slices.BinarySearch(s.cpus, cpu)

	return ok
}

// String renders the set back as a canonical range-compacted string, e.g.
// a Set built from "0,1,2,3,5,7" renders as "0-3,5,7".
func (s Set) String() string {
	if len(s.cpus) == 0 {
		return ""
	}

	var out []byte

	start := s.cpus[0]
	prev := s.cpus[0]

	flush := func(from, to int) {
		if len(out) > 0 {
			out = append(out, ',')
		}

		out = strconv.AppendInt(out, int64(from), 10)

		if to != from {
			out = append(out, '-')
			out = strconv.AppendInt(out, int64(to), 10)
		}
	}

	for _, cpu := range s.cpus[1:] {
		if cpu == prev+1 {
			prev = cpu

			continue
		}

		flush(start, prev)
		start, prev = cpu, cpu
	}

	flush(start, prev)

	return string(out)
}

// Parse consumes a CPU-range string and builds a Set from it, validating
// that the input holds no illegal characters or out-of-order ranges.
func Parse(s string) (Set, error) {
	if err := validateCharacters(s); err != nil {
		return Set{}, err
	}

	return parse.Run([]byte(s), StateFunc, ParseFunc, ProcessFunc)
}

// ProcessFunc is the third and last phase of the parser, turning a validated
// parse.Tree into a Set.
func ProcessFunc(t *parse.Tree[Token, byte]) (Set, error) {
	if err := Validate(t); err != nil {
		return Set{}, err
	}

	members := make(map[int]struct{})

	for _, node := range t.List() {
		if err := collectMember(node, members); err != nil {
			return Set{}, err
		}
	}

	cpus := make([]int, 0, len(members))
	for cpu := range members {
		cpus = append(cpus, cpu)
	}

	slices.Sort(cpus)

	return Set{cpus: cpus}, nil
}

// collectMember walks a top-level node's flat edge list in order, the same
// way cronlex's processAlphaNum does: a running "current value" is carried
// across sibling edges, so a comma updates it and a dash turns it into a
// range against whatever value came before.
func collectMember(node *parse.Node[Token, byte], members map[int]struct{}) error {
	value := atoi(node.Value)
	members[value] = struct{}{}

	for _, edge := range node.Edges {
		switch edge.Type {
		case TokenDash:
			to := atoi(edge.Edges[0].Value)
			if to < value {
				return fmt.Errorf("%w: %d-%d", ErrInvalidRange, value, to)
			}

			for cpu := value; cpu <= to; cpu++ {
				members[cpu] = struct{}{}
			}

			value = to
		case TokenComma:
			value = atoi(edge.Edges[0].Value)
			members[value] = struct{}{}
		}
	}

	return nil
}

func atoi(b []byte) int {
	n, _ := strconv.Atoi(string(b))

	return n
}
