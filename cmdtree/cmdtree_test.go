package cmdtree

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/go-cmp/cmp"
)

func TestSplitAlias(t *testing.T) {
	tests := []struct {
		alias   string
		want    AliasParts
		wantErr bool
	}{
		{alias: "ping", want: AliasParts{Command: "ping"}},
		{alias: "role/add", want: AliasParts{Command: "role", Sub: "add"}},
		{alias: "mod/role/add", want: AliasParts{Command: "mod", Group: "role", Sub: "add"}},
		{alias: "a/b/c/d", wantErr: true},
		{alias: "", wantErr: true},
		{alias: "foo//bar", wantErr: true},
		{alias: "/foo", wantErr: true},
		{alias: "foo/", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.alias, func(t *testing.T) {
			parts, err := SplitAlias(test.alias)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.want, parts)
		})
	}
}

func TestBuild(t *testing.T) {
	entries := []Entry{
		{Alias: "foo/bar1/test1", Description: "foo bar1 test1"},
		{Alias: "foo/bar1/test2", Description: "foo bar1 test2"},
		{Alias: "foo/bar2/test1", Description: "foo bar2 test1"},
		{Alias: "foo/bar2/test2", Description: "foo bar2 test2"},
		{Alias: "foo/test1", Description: "foo test1"},
		{Alias: "foo/test2", Description: "foo test2"},
		{Alias: "bar", Description: "bar", Options: []Option{
			{Name: "nonce", Type: "string", Description: "optional nonce"},
		}},
	}

	want := []Node{
		{
			Name:        "foo",
			Description: "Subcommands.",
			Children: []Node{
				{
					Name:        "bar1",
					Description: "foo bar1 test1",
					Children: []Node{
						{Name: "test1", Description: "foo bar1 test1"},
						{Name: "test2", Description: "foo bar1 test2"},
					},
				},
				{
					Name:        "bar2",
					Description: "foo bar2 test1",
					Children: []Node{
						{Name: "test1", Description: "foo bar2 test1"},
						{Name: "test2", Description: "foo bar2 test2"},
					},
				},
				{Name: "test1", Description: "foo test1"},
				{Name: "test2", Description: "foo test2"},
			},
		},
		{
			Name:        "bar",
			Description: "bar",
			Options: []Option{
				{Name: "nonce", Type: "string", Description: "optional nonce"},
			},
		},
	}

	nodes, err := Build(entries)
	assert.NoError(t, err)

	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestBuild_missingDescription(t *testing.T) {
	entries := []Entry{
		{Alias: "foo/bar1/test1", Description: "ok"},
		{Alias: "foo/bar1/test2"},
	}

	_, err := Build(entries)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `"foo/bar1/test2"`)
}

func TestBuild_missingLeafDescription(t *testing.T) {
	_, err := Build([]Entry{{Alias: "bar"}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `"bar"`)
}

func TestBuild_badSegmentCount(t *testing.T) {
	_, err := Build([]Entry{{Alias: "a/b/c/d", Description: "too deep"}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `"a/b/c/d"`)
}

func TestBuild_bareAliasConflict(t *testing.T) {
	entries := []Entry{
		{Alias: "foo", Description: "bare"},
		{Alias: "foo/test", Description: "nested"},
	}

	_, err := Build(entries)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `"foo"`)
}
