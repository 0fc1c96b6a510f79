package collider_test

import (
	"testing"

	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/stretchr/testify/require"
)

func TestFilters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		filter collider.Filter
		block  string
		want   bool
	}{
		{name: "allow all", filter: collider.AllowAll, block: "\x00'''", want: true},
		{name: "nul rejected", filter: collider.DisallowBytes(0x00), block: "ab\x00c", want: false},
		{name: "high byte rejected", filter: collider.DisallowBytes(0xff), block: "ab\xffc", want: false},
		{name: "high byte not confused with utf8", filter: collider.DisallowBytes(0xc3), block: "ab\xa9c", want: true},
		{name: "clean bytes", filter: collider.DisallowBytes(0x00, '\n'), block: "abc", want: true},
		{name: "triple quote", filter: collider.DisallowSubstrings([]byte("'''")), block: "a'''b", want: false},
		{name: "lone quotes pass", filter: collider.DisallowSubstrings([]byte("'''")), block: "a''b'", want: true},
		{name: "empty substring ignored", filter: collider.DisallowSubstrings(nil, []byte{}), block: "abc", want: true},
		{
			name:   "and combines",
			filter: collider.And(collider.DisallowBytes(0x00), nil, collider.DisallowSubstrings([]byte("'''"))),
			block:  "x'''",
			want:   false,
		},
		{name: "empty and", filter: collider.And(), block: "\x00", want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.filter([]byte(tc.block)))
		})
	}
}
