package api

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakevault/internal/stakeapi"
)

func feedOf(n int) []stakeapi.Transaction {
	feed := make([]stakeapi.Transaction, n)
	for i := range feed {
		feed[i] = stakeapi.Transaction{Id: uint(n - i), Type: stakeapi.TxProfit, Amount: float64(i + 1)}
	}
	return feed
}

func TestPaginateTxFirstPage(t *testing.T) {
	paginated := paginateTx(feedOf(45), 1, 20)
	assert.Equal(t, 45, paginated.Count)
	require.Len(t, paginated.Results, 20)
	assert.Equal(t, uint(45), paginated.Results[0].Id)
	assert.Equal(t, "/transactions/?page=2&size=20", paginated.Next)
	assert.Empty(t, paginated.Previous)
}

func TestPaginateTxMiddlePage(t *testing.T) {
	paginated := paginateTx(feedOf(45), 2, 20)
	require.Len(t, paginated.Results, 20)
	assert.Equal(t, uint(25), paginated.Results[0].Id)
	assert.Equal(t, "/transactions/?page=3&size=20", paginated.Next)
	assert.Equal(t, "/transactions/?page=1&size=20", paginated.Previous)
}

func TestPaginateTxLastPartialPage(t *testing.T) {
	paginated := paginateTx(feedOf(45), 3, 20)
	require.Len(t, paginated.Results, 5)
	assert.Empty(t, paginated.Next)
	assert.Equal(t, "/transactions/?page=2&size=20", paginated.Previous)
}

func TestPaginateTxPastTheEnd(t *testing.T) {
	paginated := paginateTx(feedOf(10), 5, 20)
	assert.Equal(t, 10, paginated.Count)
	assert.Empty(t, paginated.Results)
	assert.Empty(t, paginated.Next)
}

func TestPaginateTxEmptyFeed(t *testing.T) {
	paginated := paginateTx(nil, 1, 20)
	assert.Zero(t, paginated.Count)
	assert.NotNil(t, paginated.Results)
}

func TestPaginateTxExactBoundary(t *testing.T) {
	paginated := paginateTx(feedOf(40), 2, 20)
	require.Len(t, paginated.Results, 20)
	assert.Empty(t, paginated.Next, fmt.Sprint("no next page after ", len(paginated.Results)))
}
