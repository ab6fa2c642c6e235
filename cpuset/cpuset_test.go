package cpuset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, testcase := range []struct {
		name  string
		input string
		wants []int
		err   error
	}{
		{
			name:  "Success/Single",
			input: "3",
			wants: []int{3},
		},
		{
			name:  "Success/SimpleRange",
			input: "0-3",
			wants: []int{0, 1, 2, 3},
		},
		{
			name:  "Success/RangeAndSingles",
			input: "0-3,5,7",
			wants: []int{0, 1, 2, 3, 5, 7},
		},
		{
			name:  "Success/TwoRanges",
			input: "0-1,4-6",
			wants: []int{0, 1, 4, 5, 6},
		},
		{
			name:  "Success/OverlapIsDeduplicated",
			input: "0-3,2-5",
			wants: []int{0, 1, 2, 3, 4, 5},
		},
		{
			name:  "Success/SpacesTolerated",
			input: "0-3, 5, 7",
			wants: []int{0, 1, 2, 3, 5, 7},
		},
		{
			name:  "Success/UnorderedInput",
			input: "7,0-3,5",
			wants: []int{0, 1, 2, 3, 5, 7},
		},
		{
			name: "Fail/Empty",
			err:  ErrEmptyInput,
		},
		{
			name:  "Fail/IllegalCharacter",
			input: "0-3,x",
			err:   ErrInvalidCharacter,
		},
		{
			name:  "Fail/DescendingRange",
			input: "5-2",
			err:   ErrInvalidRange,
		},
	} {
		t.Run(testcase.name, func(t *testing.T) {
			set, err := Parse(testcase.input)

			if testcase.err != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, testcase.err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, testcase.wants, set.CPUs())
		})
	}
}

func TestSetString(t *testing.T) {
	for _, testcase := range []struct {
		name  string
		input string
		wants string
	}{
		{name: "Single", input: "3", wants: "3"},
		{name: "ContiguousRange", input: "0-3", wants: "0-3"},
		{name: "RangeAndSingles", input: "0-3,5,7", wants: "0-3,5,7"},
		{name: "UnorderedCompacts", input: "7,0-3,5", wants: "0-3,5,7"},
	} {
		t.Run(testcase.name, func(t *testing.T) {
			set, err := Parse(testcase.input)
			require.NoError(t, err)
			require.Equal(t, testcase.wants, set.String())
		})
	}
}

func TestSetContains(t *testing.T) {
	set, err := Parse("0-3,5,7")
	require.NoError(t, err)

	require.True(t, set.Contains(0))
	require.True(t, set.Contains(3))
	require.True(t, set.Contains(5))
	require.False(t, set.Contains(4))
	require.False(t, set.Contains(8))
	require.Equal(t, 6, set.Len())
}
