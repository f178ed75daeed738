package git

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBranchList(t *testing.T) {
	output := "* master\n" +
		"  story001_Fix_bug\n" +
		"  remotes/origin/HEAD -> origin/master\n" +
		"  remotes/origin/master\r\n" +
		"\n"

	assert.Equal(t, []string{
		"master",
		"story001_Fix_bug",
		"remotes/origin/HEAD -> origin/master",
		"remotes/origin/master",
	}, ParseBranchList(output))

	assert.Empty(t, ParseBranchList(""))
}

// initRepo creates a repository with one commit, skipping when git is missing.
func initRepo(t *testing.T) Client {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	client := Client{Dir: t.TempDir()}
	steps := [][]string{
		{"init", "-q"},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "--allow-empty", "-m", "init"},
	}
	for _, args := range steps {
		_, err := client.run(args...)
		require.NoError(t, err)
	}
	return client
}

func TestCreateAndRenameBranch(t *testing.T) {
	client := initRepo(t)
	require.NoError(t, client.Available())

	require.NoError(t, client.CreateBranch("story001_Fix_bug"))
	branches, err := client.Branches()
	require.NoError(t, err)
	assert.Contains(t, branches, "story001_Fix_bug")

	require.NoError(t, client.RenameBranch("story001_Fix_bug.v02"))
	branches, err = client.Branches()
	require.NoError(t, err)
	assert.Contains(t, branches, "story001_Fix_bug.v02")
	assert.NotContains(t, branches, "story001_Fix_bug")
}

func TestAvailableOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	client := Client{Dir: dir}
	err := client.Available()
	assert.True(t, errors.Is(err, ErrNoVCS))
}

func TestEmptyBranchName(t *testing.T) {
	client := Client{}
	assert.Error(t, client.CreateBranch(" "))
	assert.Error(t, client.RenameBranch(""))
}
