package extraction

const systemPrompt = "You read supplier invoices and copy field values exactly as printed. Always respond with a single JSON object."

// fieldPrompt asks for every raw field the normalizer consumes. Values are
// copied verbatim; all cleanup happens downstream.
const fieldPrompt = `Extract the following details from this invoice page and return them as a JSON object with exactly these keys:

- "invoice_no": the invoice number (also printed as Invoice #, Bill No, Tax Invoice No).
- "invoice_date": the invoice date exactly as printed.
- "currency": the currency code, name or symbol shown next to the amounts.
- "po_number": every purchase order number on the page (PO No, P.O., Order No, Your Ref). Use a list when there is more than one.
- "delivery_note_number": the delivery note or DN number.
- "sub_total": the total before tax.
- "vat_amount": the VAT amount.
- "suspended_tax_amount": the suspended VAT (SVAT) amount.
- "invoice_amount": the grand total payable.
- "supplier_name": the name of the company issuing the invoice.
- "supplier_address": the street address of the issuing company.
- "supplier_telephone": the telephone number of the issuing company.
- "sbu_address": the billing address of the customer the invoice is addressed to.

Rules:
- Copy values as printed, including separators and currency symbols. Do not calculate or guess.
- Use null for any field that is not on this page.
- Return the JSON object only, without any other text.`
