// Package export renders a user's task list as an XML document for the
// /api/tasks/export endpoint.
package export

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"todo-service/internal/models"
)

// TasksXML builds the export document for one user's tasks.
func TasksXML(owner *models.User, tasks []models.Task) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("tasks")
	root.CreateAttr("owner", owner.Username)
	root.CreateAttr("exported_at", time.Now().UTC().Format(time.RFC3339))

	for _, t := range tasks {
		el := root.CreateElement("task")
		el.CreateAttr("id", t.ID)
		el.CreateElement("text").SetText(t.Text)
		el.CreateElement("priority").SetText(t.Priority)
		el.CreateElement("category").SetText(t.Category)
		if t.Deadline != nil {
			el.CreateElement("deadline").SetText(*t.Deadline)
		}
		el.CreateElement("completed").SetText(strconv.FormatBool(t.Completed))
		el.CreateElement("created_at").SetText(t.CreatedAt.Format(time.RFC3339))
		el.CreateElement("updated_at").SetText(t.UpdatedAt.Format(time.RFC3339))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
