package cmd

import (
	"io"
	"strings"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/olekukonko/tablewriter"
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func renderSessions(w io.Writer, sessions []models.Session) {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.KasmID,
			s.Username,
			s.Image.FriendlyName,
			s.OperationalStatus,
			s.StartDate,
			s.ExpirationDate,
		})
	}
	renderTable(w, []string{"ID", "User", "Image", "Status", "Started", "Expires"}, rows)
}

func renderImages(w io.Writer, images []models.Image) {
	rows := make([][]string, 0, len(images))
	for _, i := range images {
		rows = append(rows, []string{i.ImageID, i.FriendlyName})
	}
	renderTable(w, []string{"ID", "Name"}, rows)
}

func renderUsers(w io.Writer, users []models.User) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		groups := make([]string, 0, len(u.Groups))
		for _, g := range u.Groups {
			groups = append(groups, g.Name)
		}
		rows = append(rows, []string{u.UserID, u.Username, strings.Join(groups, ", ")})
	}
	renderTable(w, []string{"ID", "Username", "Groups"}, rows)
}
