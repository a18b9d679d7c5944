package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleJob() *Job {
	return &Job{
		ID:          "65f0c0ffee0000000000a001",
		HREmail:     "hr@acme.io",
		HRName:      "Dana",
		Title:       "Backend Engineer",
		Company:     "Acme",
		CompanyLogo: "https://acme.io/logo.png",
		Location:    "Remote",
		JobType:     "Full-time",
		Category:    "Engineering",
	}
}

func TestApplication_Enrich(t *testing.T) {
	app := &Application{JobID: "65f0c0ffee0000000000a001", ApplicantEmail: "a@x.com"}
	assert.False(t, app.Enriched())

	app.Enrich(sampleJob())

	assert.True(t, app.Enriched())
	assert.Equal(t, "Backend Engineer", app.Title)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, "https://acme.io/logo.png", app.CompanyLogo)
	assert.Equal(t, "Remote", app.Location)
	assert.Equal(t, "Full-time", app.JobType)
	assert.Equal(t, "Engineering", app.Category)
	assert.Equal(t, "Dana", app.HRName)
}

func TestApplication_EnrichNilJob(t *testing.T) {
	app := &Application{JobID: "gone"}

	app.Enrich(nil)

	assert.False(t, app.Enriched())
}

func TestApplication_DisplayFieldsNotPersisted(t *testing.T) {
	app := &Application{JobID: "j1", ApplicantEmail: "a@x.com", Status: DefaultApplicationStatus}
	app.Enrich(sampleJob())

	raw, err := bson.Marshal(app)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	assert.NotContains(t, doc, "title")
	assert.NotContains(t, doc, "company")
	assert.NotContains(t, doc, "hr_name")
	assert.NotContains(t, doc, "_id")
	assert.Equal(t, "a@x.com", doc["applicant_email"])
}

func TestApplication_DisplayFieldsInJSON(t *testing.T) {
	app := &Application{JobID: "j1"}
	app.Enrich(sampleJob())

	raw, err := json.Marshal(app)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"title":"Backend Engineer"`)
	assert.Contains(t, string(raw), `"hr_name":"Dana"`)
}

func TestStreamKey(t *testing.T) {
	assert.Equal(t, "job:abc:applications", StreamKey("abc"))
}

func TestApplication_UnknownFieldsSurvive(t *testing.T) {
	body := []byte(`{"job_id":"j1","applicant_email":"a@x.com","coverLetter":"Hello","phone":"555-0100","references":{"name":"Kim","years":3}}`)

	var app Application
	require.NoError(t, json.Unmarshal(body, &app))
	assert.Equal(t, "j1", app.JobID)
	assert.Equal(t, "Hello", app.Extra["coverLetter"])
	assert.NotContains(t, app.Extra, "job_id")

	raw, err := bson.Marshal(app)
	require.NoError(t, err)
	var stored Application
	require.NoError(t, bson.Unmarshal(raw, &stored))
	assert.Equal(t, "555-0100", stored.Extra["phone"])
	assert.Equal(t, "a@x.com", stored.ApplicantEmail)

	out, err := json.Marshal(&stored)
	require.NoError(t, err)
	var echoed map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &echoed))
	assert.Equal(t, "Hello", echoed["coverLetter"])
	assert.Equal(t, "555-0100", echoed["phone"])
	assert.Equal(t, map[string]interface{}{"name": "Kim", "years": float64(3)}, echoed["references"])
	assert.Equal(t, "j1", echoed["job_id"])
}

func TestApplication_ModelledFieldsWinOverExtra(t *testing.T) {
	app := Application{JobID: "j1", Extra: bson.M{"job_id": "other", "phone": "555-0100"}}

	out, err := json.Marshal(app)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"job_id":"j1"`)
	assert.NotContains(t, string(out), "other")
}

func TestApplication_OperatorKeysDropped(t *testing.T) {
	var app Application
	require.NoError(t, json.Unmarshal([]byte(`{"job_id":"j1","$where":"1"}`), &app))

	assert.Empty(t, app.Extra)
}

func TestJob_UnknownFieldsSurvive(t *testing.T) {
	body := []byte(`{"hr_email":"hr@acme.io","title":"Backend Engineer","benefits":["remote","equity"],"applicationCount":9}`)

	var job Job
	require.NoError(t, json.Unmarshal(body, &job))
	assert.Equal(t, int64(9), job.ApplicationCount)
	assert.NotContains(t, job.Extra, "applicationCount")

	raw, err := bson.Marshal(job)
	require.NoError(t, err)
	var stored Job
	require.NoError(t, bson.Unmarshal(raw, &stored))

	out, err := json.Marshal(stored)
	require.NoError(t, err)
	var echoed map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &echoed))
	assert.Equal(t, []interface{}{"remote", "equity"}, echoed["benefits"])
	assert.Equal(t, "Backend Engineer", echoed["title"])
}
