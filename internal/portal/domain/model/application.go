package model

import (
	"encoding/json"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// DefaultApplicationStatus is assigned when a submission carries no status.
const DefaultApplicationStatus = "pending"

// Application is a candidate's submission to a Job, owned by ApplicantEmail.
//
// The display fields below the separator are copied from the job when the
// application is read and are never written to the store.
type Application struct {
	ID             string `json:"_id,omitempty" bson:"_id,omitempty"`
	JobID          string `json:"job_id" bson:"job_id"`
	ApplicantEmail string `json:"applicant_email" bson:"applicant_email"`
	Status         string `json:"status" bson:"status"`
	LinkedIn       string `json:"linkedIn,omitempty" bson:"linkedIn,omitempty"`
	GitHub         string `json:"github,omitempty" bson:"github,omitempty"`
	Resume         string `json:"resume,omitempty" bson:"resume,omitempty"`

	Title       string `json:"title,omitempty" bson:"-"`
	Company     string `json:"company,omitempty" bson:"-"`
	CompanyLogo string `json:"company_logo,omitempty" bson:"-"`
	Location    string `json:"location,omitempty" bson:"-"`
	JobType     string `json:"jobType,omitempty" bson:"-"`
	Category    string `json:"category,omitempty" bson:"-"`
	HRName      string `json:"hr_name,omitempty" bson:"-"`

	// Extra holds submitted fields with no struct field, such as a cover letter.
	Extra bson.M `json:"-" bson:",inline"`
}

type applicationFields Application

func (a Application) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(applicationFields(a))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, a.Extra)
}

func (a *Application) UnmarshalJSON(data []byte) error {
	var fields applicationFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := splitExtra(data, reflect.TypeOf(fields))
	if err != nil {
		return err
	}
	fields.Extra = extra
	*a = Application(fields)
	return nil
}

// Enrich copies the job's display fields onto the application.
func (a *Application) Enrich(job *Job) {
	if job == nil {
		return
	}
	a.Title = job.Title
	a.Company = job.Company
	a.CompanyLogo = job.CompanyLogo
	a.Location = job.Location
	a.JobType = job.JobType
	a.Category = job.Category
	a.HRName = job.HRName
}

// Enriched reports whether Enrich has populated the display fields.
func (a *Application) Enriched() bool {
	return a.Title != "" || a.Company != ""
}
