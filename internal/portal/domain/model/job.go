package model

import (
	"encoding/json"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// SalaryRange is the advertised pay band of a posting.
type SalaryRange struct {
	Min      float64 `json:"min" bson:"min"`
	Max      float64 `json:"max" bson:"max"`
	Currency string  `json:"currency" bson:"currency"`
}

// Job is a posting owned by the recruiter whose email is HREmail.
type Job struct {
	ID                  string      `json:"_id,omitempty" bson:"_id,omitempty"`
	HREmail             string      `json:"hr_email" bson:"hr_email"`
	HRName              string      `json:"hr_name" bson:"hr_name"`
	Title               string      `json:"title" bson:"title"`
	Company             string      `json:"company" bson:"company"`
	CompanyLogo         string      `json:"company_logo" bson:"company_logo"`
	Location            string      `json:"location" bson:"location"`
	JobType             string      `json:"jobType" bson:"jobType"`
	Category            string      `json:"category" bson:"category"`
	ApplicationDeadline string      `json:"applicationDeadline" bson:"applicationDeadline"`
	SalaryRange         SalaryRange `json:"salaryRange" bson:"salaryRange"`
	Description         string      `json:"description" bson:"description"`
	Requirements        []string    `json:"requirements" bson:"requirements"`
	Responsibilities    []string    `json:"responsibilities" bson:"responsibilities"`
	Status              string      `json:"status" bson:"status"`

	// ApplicationCount is maintained by application submit and withdraw,
	// never by the client.
	ApplicationCount int64 `json:"applicationCount" bson:"applicationCount"`

	Extra bson.M `json:"-" bson:",inline"`
}

type jobFields Job

func (j Job) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(jobFields(j))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, j.Extra)
}

func (j *Job) UnmarshalJSON(data []byte) error {
	var fields jobFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := splitExtra(data, reflect.TypeOf(fields))
	if err != nil {
		return err
	}
	fields.Extra = extra
	*j = Job(fields)
	return nil
}
