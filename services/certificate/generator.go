package certificate

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"lms/config"
	"lms/models"
	courseModels "lms/models/course"
)

// Generator produces the certificate artifact for an issued enrollment and
// returns the URL under which it is reachable. Issuance bookkeeping stays in
// the enrollment service; only artifact production lives behind this interface.
type Generator interface {
	Generate(enrollment *courseModels.Enrollment, user *models.User, course *courseModels.Course) (string, error)
}

// LocalGenerator records a deterministic path under the public certificates
// folder without rendering anything.
type LocalGenerator struct {
	BasePath string
}

func (g *LocalGenerator) Generate(enrollment *courseModels.Enrollment, _ *models.User, _ *courseModels.Course) (string, error) {
	base := g.BasePath
	if base == "" {
		base = "/certificates"
	}
	return fmt.Sprintf("%s/certificate-%d.pdf", base, enrollment.ID), nil
}

// RemoteGenerator asks an external rendering service to produce the
// certificate document and returns the URL it reports back.
type RemoteGenerator struct {
	BaseURL string
	client  *resty.Client
}

func NewRemoteGenerator(baseURL string) *RemoteGenerator {
	return &RemoteGenerator{BaseURL: baseURL, client: resty.New()}
}

func (g *RemoteGenerator) Generate(enrollment *courseModels.Enrollment, user *models.User, course *courseModels.Course) (string, error) {
	var result struct {
		URL string `json:"url"`
	}

	body := map[string]interface{}{
		"enrollment_id":      enrollment.ID,
		"certificate_number": enrollment.CertificateNumber,
		"course_title":       course.Title,
		"instructor":         course.Instructor,
	}
	if user != nil {
		body["recipient_name"] = user.FirstName + " " + user.LastName
	}

	resp, err := g.client.R().
		SetBody(body).
		SetResult(&result).
		Post(g.BaseURL + "/render")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("certificate service returned %d", resp.StatusCode())
	}
	if result.URL == "" {
		return "", fmt.Errorf("certificate service returned no url")
	}
	return result.URL, nil
}

// FromConfig picks the remote renderer when CERT_SERVICE_URL is set, the local
// path generator otherwise.
func FromConfig() Generator {
	if config.AppConfig != nil && config.AppConfig.CertServiceURL != "" {
		return NewRemoteGenerator(config.AppConfig.CertServiceURL)
	}
	base := ""
	if config.AppConfig != nil {
		base = config.AppConfig.CertBasePath
	}
	return &LocalGenerator{BasePath: base}
}
