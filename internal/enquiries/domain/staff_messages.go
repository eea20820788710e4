package domain

import "fmt"

// StaffIntroductionMessages is the sequence sent to a customer once a staff
// member claims the enquiry: introduction, business nature, loan amount.
func StaffIntroductionMessages(staffName string) []string {
	intro := fmt.Sprintf(`Hi Sir/Madam

This is %s

How can I help you

We provide collateral free loan for all kinds of businesses based on transactions

Loan from 5 lacs to 5 crores - GST is must 

Working Hours : 10.00AM - 6.00PM`, staffName)

	return []string{
		intro,
		"Could you please tell us about your business and its nature",
		"And what is the loan amount you require",
	}
}
