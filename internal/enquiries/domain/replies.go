package domain

const replyGetLoan = `Business Guru is banking associate for loans especially business loans.

We provide collateral free loans based on turnover for all kinds of business without considering CIBIL scores of the customer/business`

const replyCheckEligibility = `📋 Documents Needed for Eligibility Check 
Please share:  
1️⃣ Business Registration  
2️⃣ GST Certificate  
3️⃣ Company Bank Details  
4️⃣ 6-12 Month Bank Statements  
5️⃣ Website URL  
6️⃣ Owner PAN + Aadhaar  
7️⃣ Business PAN  
8️⃣ Email & Mobile  
- IE Code (Imports/Exports)  
- Intl. Payment Gateway 
- Send photos/PDFs one-by-one  
We'll verify within 4 hours!`

const replyMoreDetails = `Welcome to Business Guru! We're delighted to have you with us. At Business Guru, we specialize in providing collateral loans to help businesses like yours grow and thrive. Our team of financial experts is ready to assist you with personalized loan solutions tailored to your business needs. We'll be contacting you shortly to discuss your requirements in detail and guide you through our simple application process.`

var replyTexts = map[Intent]string{
	IntentReplyGetLoan:          replyGetLoan,
	IntentReplyCheckEligibility: replyCheckEligibility,
	IntentReplyMoreDetails:      replyMoreDetails,
}

// ReplyText returns the canned answer for a reply keyword intent.
func ReplyText(intent Intent) (string, bool) {
	text, ok := replyTexts[intent]
	return text, ok
}
