package cron_test

import (
	"testing"
	"time"

	"github.com/absmach/greenboard/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 3, 14, 9, 17, 30, 0, time.UTC)

	cases := []struct {
		desc string
		expr string
		next time.Time
		err  error
	}{
		{
			desc: "every descriptor",
			expr: "@every 1m",
			next: from.Add(time.Minute),
		},
		{
			desc: "hourly descriptor",
			expr: "@hourly",
			next: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		},
		{
			desc: "five fields",
			expr: "*/15 * * * *",
			next: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			desc: "empty",
			expr: "",
			err:  cron.ErrInvalidSchedule,
		},
		{
			desc: "seconds field is rejected",
			expr: "0 */15 * * * *",
			err:  cron.ErrInvalidSchedule,
		},
		{
			desc: "garbage",
			expr: "@sometimes",
			err:  cron.ErrInvalidSchedule,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			s, err := cron.Parse(tc.expr)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.True(t, s.Next(from).IsZero())

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expr, s.String())
			assert.Equal(t, tc.next, s.Next(from))
		})
	}
}
