package workpool

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) <-chan int {
	ch := make(chan int, n)
	for i := range n {
		ch <- i
	}
	close(ch)
	return ch
}

func TestRun_OrderPreservation(t *testing.T) {
	results := Run(makeItems(200), 8, func(seq int) (int, error) {
		return seq * seq, nil
	})

	var collected []int
	err := OrderedCollect(results, func(r WorkResult[int]) error {
		require.NoError(t, r.Err)
		assert.Equal(t, r.Seq*r.Seq, r.Value)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestRun_SingleWorker(t *testing.T) {
	results := Run(makeItems(50), 1, func(seq int) (string, error) {
		return fmt.Sprint(seq), nil
	})

	var collected []string
	err := OrderedCollect(results, func(r WorkResult[string]) error {
		collected = append(collected, r.Value)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, collected, 50)
	assert.Equal(t, "49", collected[49])
}

func TestRun_EmptyInput(t *testing.T) {
	ch := make(chan int)
	close(ch)
	results := Run(ch, 4, func(seq int) (int, error) { return seq, nil })

	count := 0
	err := OrderedCollect(results, func(r WorkResult[int]) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	results := Run(makeItems(100), 4, func(seq int) (int, error) { return seq, nil })

	count := 0
	err := OrderedCollect(results, func(r WorkResult[int]) error {
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
}

func TestMap(t *testing.T) {
	out, err := Map(10, 3, func(i int) (float64, error) {
		return float64(i) / 2, nil
	})
	require.NoError(t, err)
	require.Len(t, out, 10)
	assert.Equal(t, 4.5, out[9])
}

func TestMap_FirstErrorInRowOrder(t *testing.T) {
	errRow := errors.New("bad row")
	out, err := Map(50, 8, func(i int) (int, error) {
		if i == 7 || i == 30 {
			return 0, fmt.Errorf("row %d: %w", i, errRow)
		}
		return i, nil
	})
	assert.Nil(t, out)
	require.ErrorIs(t, err, errRow)
	assert.Contains(t, err.Error(), "row 7")
}

func TestMap_Zero(t *testing.T) {
	out, err := Map(0, 0, func(i int) (int, error) { return i, nil })
	require.NoError(t, err)
	assert.Empty(t, out)
}
