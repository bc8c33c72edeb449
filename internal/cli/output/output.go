package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kamy/api/internal/cli/api"
)

// Writer receives all command output.
var Writer io.Writer = os.Stdout

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
}

// JSON prints v as indented JSON.
func JSON(v interface{}) {
	enc := json.NewEncoder(Writer)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func Println(a ...interface{}) {
	fmt.Fprintln(Writer, a...)
}

func Printf(format string, a ...interface{}) {
	fmt.Fprintf(Writer, format, a...)
}

func UserInfo(u api.User) {
	w := newTable()
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	if u.Stats != nil {
		fmt.Fprintf(w, "Groups:\t%d\n", u.Stats.GroupsCount)
		fmt.Fprintf(w, "Pending Tasks:\t%d\n", u.Stats.PendingTasksCount)
	}
	w.Flush()
}

func GroupTable(groups []api.Group) {
	if len(groups) == 0 {
		Println("No groups found.")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tTASKS\tDONE\tACTIVITY")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", g.ID, g.Name, g.Members, g.Tasks, g.CompletedTasks, RelativeTime(g.LastActivity))
	}
	w.Flush()
}

func GroupDetail(g api.Group) {
	w := newTable()
	fmt.Fprintf(w, "Name:\t%s\n", g.Name)
	fmt.Fprintf(w, "ID:\t%s\n", g.ID)
	fmt.Fprintf(w, "Owner:\t%s\n", g.OwnerID)
	fmt.Fprintf(w, "Members:\t%d\n", g.Members)
	fmt.Fprintf(w, "Tasks:\t%d (%d done)\n", g.Tasks, g.CompletedTasks)
	fmt.Fprintf(w, "Last Activity:\t%s\n", g.LastActivity.Format(time.RFC3339))
	fmt.Fprintf(w, "Created:\t%s\n", g.CreatedAt.Format(time.RFC3339))
	w.Flush()
}

func MemberTable(members []api.Member) {
	if len(members) == 0 {
		Println("No members found.")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "NAME\tEMAIL\tROLE\tJOINED")
	for _, m := range members {
		role := "member"
		if m.IsOwner {
			role = "owner"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.Email, role, RelativeTime(m.JoinedAt))
	}
	w.Flush()
}

// TaskTable prints tasks; the group column only appears when names are known.
func TaskTable(tasks []api.Task) {
	if len(tasks) == 0 {
		Println("No tasks found.")
		return
	}

	showGroup := false
	for _, t := range tasks {
		if t.GroupName != "" {
			showGroup = true
			break
		}
	}

	w := newTable()
	if showGroup {
		fmt.Fprintln(w, "ID\tTITLE\tGROUP\tASSIGNEE\tDUE\tSTATUS")
	} else {
		fmt.Fprintln(w, "ID\tTITLE\tASSIGNEE\tDUE\tSTATUS")
	}
	for _, t := range tasks {
		if showGroup {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.GroupName, t.AssignedToName, t.DueDate, t.Status)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.AssignedToName, t.DueDate, t.Status)
		}
	}
	w.Flush()
}

func TaskDetail(t api.Task) {
	w := newTable()
	fmt.Fprintf(w, "Title:\t%s\n", t.Title)
	fmt.Fprintf(w, "ID:\t%s\n", t.ID)
	if t.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", t.Description)
	}
	if t.GroupName != "" {
		fmt.Fprintf(w, "Group:\t%s (%s)\n", t.GroupName, t.GroupID)
	} else {
		fmt.Fprintf(w, "Group:\t%s\n", t.GroupID)
	}
	fmt.Fprintf(w, "Assignee:\t%s\n", t.AssignedToName)
	if t.CreatedByName != "" {
		fmt.Fprintf(w, "Created By:\t%s\n", t.CreatedByName)
	}
	fmt.Fprintf(w, "Due:\t%s\n", t.DueDate)
	fmt.Fprintf(w, "Status:\t%s\n", t.Status)
	fmt.Fprintf(w, "Updated:\t%s\n", t.UpdatedAt.Format(time.RFC3339))
	w.Flush()
}

func NotificationTable(notifications []api.Notification) {
	if len(notifications) == 0 {
		Println("No notifications.")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "ID\t\tTYPE\tTITLE\tWHEN")
	for _, n := range notifications {
		marker := "*"
		if n.Read {
			marker = " "
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, marker, n.Type, n.Title, RelativeTime(n.CreatedAt))
	}
	w.Flush()
}

func VersionInfo(cliVersion string, server *api.VersionInfo, serverErr error) {
	w := newTable()
	fmt.Fprintf(w, "CLI Version:\t%s\n", cliVersion)
	if server != nil {
		fmt.Fprintf(w, "Server Version:\t%s\n", server.Version)
		fmt.Fprintf(w, "API Version:\t%s\n", server.APIVersion)
	} else if serverErr != nil {
		fmt.Fprintf(w, "Server:\tunreachable (%v)\n", serverErr)
	}
	w.Flush()
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
