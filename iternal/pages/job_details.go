package pages

import (
	"context"
	"regexp"

	"github.com/pfczx/dealls-e2e/iternal/browser"
	"github.com/pfczx/dealls-e2e/iternal/config"
)

type JobDetailsPage struct {
	BasePage
	JobDescriptionHeading browser.Locator
	QualificationsHeading browser.Locator
	ApplyButton           browser.Locator
	BenefitsSection       browser.Locator
}

func NewJobDetailsPage(page *browser.Page, site config.Site) *JobDetailsPage {
	return &JobDetailsPage{
		BasePage:              NewBasePage(page, site),
		JobDescriptionHeading: page.Heading(0).Filter(site.DescriptionHeading).First(),
		QualificationsHeading: page.Heading(0).Filter(site.QualificationsHeading).First(),
		ApplyButton:           page.Button().Filter(site.ApplyText).First(),
		BenefitsSection:       page.Heading(3).Filter(site.BenefitsHeading).First(),
	}
}

// VerifyJobDetailsPage waits for the tab to settle, checks it is showing
// jobURL and that every section is there. The first missing section fails
// the check.
func (j *JobDetailsPage) VerifyJobDetailsPage(ctx context.Context, jobURL string) error {
	if err := j.WaitForPageLoad(ctx); err != nil {
		return err
	}

	// the tab may still be committing the listing's navigation
	if err := j.Page.ExpectURL(ctx, regexp.MustCompile(regexp.QuoteMeta(jobURL))); err != nil {
		return err
	}

	for _, section := range []browser.Locator{
		j.JobDescriptionHeading,
		j.QualificationsHeading,
		j.ApplyButton,
		j.BenefitsSection,
	} {
		if err := section.WaitVisible(ctx); err != nil {
			return err
		}
	}
	return nil
}
