package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/sqlkit/validation"
)

func tableScript(table string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "INSERT INTO APP.%s (ID) VALUES (%d);\n", table, i)
	}
	return b.String()
}

func startPool(t *testing.T, workers int, opts ...Option) *Pool {
	t.Helper()
	p := NewPool(workers, opts...)
	p.Start(context.Background())
	t.Cleanup(func() { p.Close() })
	return p
}

func TestProcessChunkCount(t *testing.T) {
	resp := Process("id-1", Request{Kind: KindChunkCount, SQL: tableScript("ORDERS", 5), MaxDML: 2, Header: "SET DEFINE OFF;"})
	assert.Equal(t, "id-1", resp.ID)
	assert.Len(t, resp.Statements, 5)
	require.Len(t, resp.Chunks, 3)
	assert.Equal(t, "APP.ORDERS", resp.Chunks[0].BaseName)
	assert.Equal(t, []string{"APP.ORDERS_1.sql", "APP.ORDERS_2.sql", "APP.ORDERS_3.sql"},
		[]string{resp.Chunks[0].FileName, resp.Chunks[1].FileName, resp.Chunks[2].FileName})
	assert.True(t, strings.HasPrefix(resp.Chunks[0].Content, "SET DEFINE OFF;\n"))
	assert.Equal(t, 1, resp.Chunks[2].DMLCount)
}

func TestProcessSplitOnly(t *testing.T) {
	resp := Process("x", Request{Kind: KindSplit, SQL: "SELECT 'a;b' FROM DUAL; UPDATE T SET A = 1"})
	assert.Equal(t, []string{"SELECT 'a;b' FROM DUAL;", "UPDATE T SET A = 1;"}, resp.Statements)
	assert.Empty(t, resp.Chunks)
}

func TestProcessChunkSizeFallbackName(t *testing.T) {
	resp := Process("x", Request{Kind: KindChunkSize, SQL: "UPDATE T SET A = 1;", MaxBytes: 1000, Fallback: "quick_query"})
	require.Len(t, resp.Chunks, 1)
	assert.Equal(t, "quick_query.sql", resp.Chunks[0].FileName)
	assert.False(t, resp.Chunks[0].Oversized)
}

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, Request{Kind: KindSplit}.Validate())
	assert.NoError(t, Request{Kind: KindChunkCount, MaxDML: 1}.Validate())
	for _, req := range []Request{
		{Kind: "explode"},
		{Kind: KindChunkSize},
		{Kind: KindChunkCount},
		{Kind: KindChunkCount, MaxDML: 3, MaxBytes: -1},
	} {
		err := req.Validate()
		require.Error(t, err, req.Kind)
		assert.True(t, validation.IsValidationError(err))
	}
}

func TestPoolDeliversToMatchingTicket(t *testing.T) {
	p := startPool(t, 4)
	ctx := context.Background()

	type submitted struct {
		table  string
		n      int
		ticket *Ticket
	}
	var jobs []submitted
	for i := 0; i < 40; i++ {
		table := fmt.Sprintf("T%02d", i)
		tk, err := p.Submit(ctx, Request{Kind: KindChunkCount, SQL: tableScript(table, i+1), MaxDML: 1000})
		require.NoError(t, err)
		_, err = uuid.Parse(tk.ID)
		require.NoError(t, err)
		jobs = append(jobs, submitted{table: table, n: i + 1, ticket: tk})
	}

	var wg sync.WaitGroup
	for i := len(jobs) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(s submitted) {
			defer wg.Done()
			resp, err := s.ticket.Wait(ctx)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, s.ticket.ID, resp.ID)
			assert.Len(t, resp.Statements, s.n)
			if assert.Len(t, resp.Chunks, 1) {
				assert.Equal(t, "APP."+s.table, resp.Chunks[0].BaseName)
			}
		}(jobs[i])
	}
	wg.Wait()
}

func TestPoolDo(t *testing.T) {
	p := startPool(t, 1)
	resp, err := p.Do(context.Background(), Request{Kind: KindSplit, SQL: "DELETE FROM T; -- trailing"})
	require.NoError(t, err)
	assert.Len(t, resp.Statements, 1)
}

func TestPoolRejectsInvalidAndUnstarted(t *testing.T) {
	idle := NewPool(2)
	_, err := idle.Submit(context.Background(), Request{Kind: KindSplit})
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.NoError(t, idle.Close())

	p := startPool(t, 1)
	_, err = p.Submit(context.Background(), Request{Kind: KindChunkSize})
	assert.True(t, validation.IsValidationError(err))
}

func TestPoolClose(t *testing.T) {
	p := NewPool(2)
	p.Start(context.Background())
	tk, err := p.Submit(context.Background(), Request{Kind: KindSplit, SQL: "SELECT 1 FROM DUAL;"})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	resp, err := tk.Wait(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Statements, 1)

	_, err = p.Submit(context.Background(), Request{Kind: KindSplit})
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, p.Close())
}

func TestCancelledPoolAnswersEveryTicket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(1, WithQueueSize(32))
	p.Start(ctx)

	var tickets []*Ticket
	for i := 0; i < 20; i++ {
		tk, err := p.Submit(context.Background(), Request{Kind: KindChunkCount, SQL: tableScript("ORDERS", 50), MaxDML: 3})
		require.NoError(t, err)
		tickets = append(tickets, tk)
	}
	cancel()

	for i := 0; i < 20; i++ {
		_, err := p.Submit(context.Background(), Request{Kind: KindSplit, SQL: "SELECT 1 FROM DUAL;"})
		assert.ErrorIs(t, err, ErrClosed)
	}
	for _, tk := range tickets {
		wait, stop := context.WithTimeout(context.Background(), 2*time.Second)
		resp, err := tk.Wait(wait)
		stop()
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
			continue
		}
		assert.Equal(t, tk.ID, resp.ID)
	}
	assert.NoError(t, p.Close())
}

func TestTicketWaitHonorsContext(t *testing.T) {
	tk := &Ticket{ID: "never", done: make(chan outcome, 1)}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := tk.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCancelledRequestIsNotProcessed(t *testing.T) {
	p := startPool(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tk, err := p.Submit(ctx, Request{Kind: KindSplit, SQL: "SELECT 1 FROM DUAL;"})
	if err != nil {
		return
	}
	cancel()
	resp, err := tk.Wait(context.Background())
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
		return
	}
	assert.Equal(t, tk.ID, resp.ID)
}
