package services

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"umbraco-cms/pkg/config"
)

// ExecuteGitWithToken runs git in dir, swapping the remote name in args for
// an authenticated URL. The token is masked in the returned log.
func ExecuteGitWithToken(ctx context.Context, dir, token string, args ...string) (string, error) {
	cmdGetURL := exec.CommandContext(ctx, "git", "remote", "get-url", config.GitRemote)
	cmdGetURL.Dir = dir
	outURL, err := cmdGetURL.Output()
	if err != nil {
		return "Failed to get remote url", err
	}
	remoteURL := strings.TrimSpace(string(outURL))
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "Invalid remote url", err
	}
	u.User = url.UserPassword("oauth2", token)
	authenticatedURL := u.String()

	newArgs := make([]string, len(args))
	copy(newArgs, args)
	for i, v := range newArgs {
		if v == config.GitRemote {
			newArgs[i] = authenticatedURL
		}
	}
	cmd := exec.CommandContext(ctx, "git", newArgs...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	safeLog := strings.ReplaceAll(string(output), authenticatedURL, remoteURL)
	if token != "" {
		safeLog = strings.ReplaceAll(safeLog, token, "***")
	}
	return safeLog, err
}

func SyncRepo(ctx context.Context, token string) (string, error) {
	log, err := ExecuteGitWithToken(ctx, config.RepoPath, token, "pull", config.GitRemote, config.GitBranch)
	if err == nil {
		InvalidateCache()
	}
	return log, err
}

// PublishRepo commits every change, including saved schedules, and pushes.
func PublishRepo(ctx context.Context, token string) (string, error) {
	addCmd := exec.CommandContext(ctx, "git", "add", ".")
	addCmd.Dir = config.RepoPath
	if out, err := addCmd.CombinedOutput(); err != nil {
		return string(out), err
	}
	msg := fmt.Sprintf("Update via Umbraco CMS: %s", time.Now().Format("2006-01-02 15:04:05"))
	commitCmd := exec.CommandContext(ctx, "git",
		"-c", "user.name="+config.GitUserName,
		"-c", "user.email="+config.GitUserEmail,
		"commit", "-m", msg)
	commitCmd.Dir = config.RepoPath
	// nothing to commit is not an error for publishing
	_ = commitCmd.Run()

	log, err := ExecuteGitWithToken(ctx, config.RepoPath, token, "push", config.GitRemote, config.GitBranch)
	if err == nil {
		InvalidateCache()
	}
	return log, err
}

// Diff compares the editor content with the saved file, then falls back to
// the working tree against HEAD. The second return is the diff type.
func Diff(ctx context.Context, f1Path, f2Path, relPath string) (string, string) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--no-index", f1Path, f2Path)
	output, err := cmd.CombinedOutput()

	if err != nil && cmd.ProcessState != nil && cmd.ProcessState.ExitCode() == 1 {
		diffStr := string(output)
		diffStr = strings.ReplaceAll(diffStr, f1Path, "Saved (Normalized)")
		diffStr = strings.ReplaceAll(diffStr, f2Path, "Editor")
		return diffStr, "unsaved"
	}

	cmdGit := exec.CommandContext(ctx, "git", "diff", "HEAD", "--", relPath)
	cmdGit.Dir = config.RepoPath
	outGit, _ := cmdGit.CombinedOutput()

	if len(outGit) > 0 {
		return string(outGit), "git"
	}
	return "", "none"
}
