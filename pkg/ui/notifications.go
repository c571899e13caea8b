package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"

	"scoreahack/pkg/models"
	"scoreahack/pkg/pipeline"
)

// AppName titles desktop notifications
const AppName = "Score a Hack"

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender uses notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name="+AppName, title, message).Run()
}

// MacOSNotificationSender uses osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(message), strconv.Quote(title))
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender uses a PowerShell balloon tip
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms
$n = New-Object System.Windows.Forms.NotifyIcon
$n.Icon = [System.Drawing.SystemIcons]::Information
$n.Visible = $true
$n.ShowBalloonTip(5000, '%s', '%s', 'Info')
Start-Sleep -Seconds 5
$n.Dispose()`, psEscape(title), psEscape(message))
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func psEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\'' {
			out = append(out, '\'')
		}
		out = append(out, r)
	}
	return string(out)
}

// Notifier announces finished analyses on the desktop. It satisfies
// pipeline.Observer and ignores everything but Finished.
type Notifier struct {
	sender NotificationSender
	label  string
}

// NewNotifier picks a sender for the current platform
func NewNotifier(label string) *Notifier {
	var sender NotificationSender
	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}
	return &Notifier{sender: sender, label: label}
}

// NewNotifierWithSender is used by tests and by callers with their own transport
func NewNotifierWithSender(sender NotificationSender, label string) *Notifier {
	return &Notifier{sender: sender, label: label}
}

func (n *Notifier) StageStarted(pipeline.Stage)                {}
func (n *Notifier) CandidatesFound(int)                        {}
func (n *Notifier) CandidateScored(models.ProjectRef, float64) {}
func (n *Notifier) CandidateDropped(string, error)             {}

// Finished sends the outcome. Delivery failures are ignored.
func (n *Notifier) Finished(result *models.Analysis, err error) {
	if n.sender == nil {
		return
	}
	title, message := notification(n.label, result, err)
	_ = n.sender.Send(title, message)
}

func notification(label string, result *models.Analysis, err error) (string, string) {
	if err != nil {
		return AppName + ": analysis failed", fmt.Sprintf("%s: %v", label, err)
	}
	if result == nil {
		return AppName, label + " analyzed"
	}
	msg := fmt.Sprintf("%s scored %d/100 against %d similar projects",
		label, result.Originality.Score, len(result.Similar))
	return AppName + ": " + result.Originality.Label(), msg
}

// Observers fans callbacks out to every non-nil observer in order
func Observers(obs ...pipeline.Observer) pipeline.Observer {
	var list multiObserver
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []pipeline.Observer

func (m multiObserver) StageStarted(s pipeline.Stage) {
	for _, o := range m {
		o.StageStarted(s)
	}
}

func (m multiObserver) CandidatesFound(n int) {
	for _, o := range m {
		o.CandidatesFound(n)
	}
}

func (m multiObserver) CandidateScored(ref models.ProjectRef, overall float64) {
	for _, o := range m {
		o.CandidateScored(ref, overall)
	}
}

func (m multiObserver) CandidateDropped(id string, err error) {
	for _, o := range m {
		o.CandidateDropped(id, err)
	}
}

func (m multiObserver) Finished(result *models.Analysis, err error) {
	for _, o := range m {
		o.Finished(result, err)
	}
}
